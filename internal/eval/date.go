package eval

import (
	"strconv"
	"strings"
	"time"
)

// strftimeDirectives maps the handful of strftime directives WeeChat-style
// date formats actually use; anything else passes through literally.
var strftimeDirectives = map[byte]string{
	'Y': "2006", 'y': "06", 'm': "01", 'd': "02",
	'H': "15", 'M': "04", 'S': "05",
	'A': "Monday", 'a': "Mon", 'B': "January", 'b': "Jan",
	'%': "%",
}

func strftime(t time.Time, format string) string {
	if format == "" {
		format = "%Y-%m-%d %H:%M:%S"
	}
	var goLayout strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' || i+1 >= len(format) {
			goLayout.WriteByte(format[i])
			continue
		}
		i++
		if layout, ok := strftimeDirectives[format[i]]; ok {
			goLayout.WriteString(layout)
		} else {
			goLayout.WriteByte('%')
			goLayout.WriteByte(format[i])
		}
	}
	return t.Format(goLayout.String())
}

// dateTransform implements ${date} / ${date:fmt}. Args of the form
// "ts,fmt" whose ts part is an integer format that Unix timestamp with fmt
// instead of "now", used when formatting a stored buffer/line timestamp.
func dateTransform(args string) string {
	t := time.Now()
	format := args
	if idx := strings.IndexByte(args, ','); idx >= 0 {
		if ts, err := strconv.ParseInt(args[:idx], 10, 64); err == nil {
			t = time.Unix(ts, 0)
		}
		format = args[idx+1:]
	}
	return strftime(t, format)
}
