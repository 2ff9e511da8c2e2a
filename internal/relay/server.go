// Package relay implements the client connection state machine and the
// HTTP+WebSocket "api" protocol server: route dispatch, authentication,
// the per-client send queue and event fan-out. It turns a raw
// net.Listener speaking a line protocol into a net/http-based server
// speaking JSON over HTTP and WebSocket, using
// github.com/gorilla/websocket to handle the upgrade and framing on the
// accept side.
package relay

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"weechat-relay/internal/config"
	"weechat-relay/internal/host"
	"weechat-relay/internal/relay/api"
	"weechat-relay/internal/relay/auth"
	"weechat-relay/pkg/apiproto"
)

const (
	weechatVersion        = "4.0.0"
	weechatVersionNumber  = "67108864"
	relayAPIVersion       = "0.1.0"
	relayAPIVersionNumber = 65792

	// inputExecDelay mirrors relay_api_protocol_command_delay: input
	// execution is scheduled a tick later to avoid reentrancy, notably
	// for commands like /upgrade that tear down the process issuing them.
	inputExecDelay = time.Millisecond
)

// Server is the relay's HTTP+WebSocket listener.
type Server struct {
	Host   host.Host
	Config *config.Store
	Log    *logrus.Entry

	// SecData holds ${sec.data.*} values; Server itself does not read it.
	// TOTPSecret, when non-empty, requires a totp= query parameter on every
	// authenticated request.
	SecData    map[string]string
	TOTPSecret string

	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
}

// NewServer wires a Server against host and config. It registers no
// options; cfg is used as given.
func NewServer(h host.Host, cfg *config.Store, log *logrus.Entry) *Server {
	return &Server{
		Host:    h,
		Config:  cfg,
		Log:     log,
		clients: make(map[*Client]struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Handler returns the http.Handler to mount (e.g. behind http.Server or
// httptest.Server), routing every /api/... request.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/", s.handleAPI)
	return mux
}

// apiResult is the transport-agnostic outcome of a route: an HTTP status,
// the body_type naming its Body's shape (per §4.6's event/body enum; left
// empty for no-content and error results), and the body itself. One
// result feeds both the plain-HTTP encoder and the WebSocket response
// envelope encoder.
type apiResult struct {
	Status   int
	BodyType string
	Body     any
}

func errResult(status int, message string) apiResult {
	return apiResult{Status: status, Body: apiproto.ErrorResponse{Error: message}}
}

func (s *Server) handleAPI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	if r.Method == http.MethodOptions {
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		w.WriteHeader(http.StatusNoContent)
		return
	}

	resource, args := splitResourcePath(r.URL.Path)
	if resource == "" {
		deliverHTTP(w, errResult(http.StatusNotFound, "Resource not found"))
		return
	}

	route, err := api.MatchRoute(r.Method, resource, len(args))
	if err != nil {
		deliverHTTP(w, errResult(http.StatusNotFound, "Resource not found"))
		return
	}

	var client *Client
	if route.AuthRequired {
		var ok bool
		client, ok = s.authenticate(w, r)
		if !ok {
			return
		}
	}

	// A successful upgrade already answered this request with
	// "101 Switching Protocols"; the http.ResponseWriter is hijacked from
	// here on, and the upgrade request's own route is not run. Later
	// requests arrive as WebSocket frames handled by readPump/dispatchWS.
	if client != nil && client.wsConn() != nil {
		return
	}

	var body []byte
	if r.Body != nil {
		body, _ = io.ReadAll(r.Body)
	}

	deliverHTTP(w, s.routeResult(resource, args, r.URL.Query(), body, client))
}

// splitResourcePath breaks an /api/... path into its top-level resource
// and the path segments following it, the same way for an http.Request's
// URL and a WebSocket request envelope's path.
func splitResourcePath(path string) (resource string, args []string) {
	trimmed := strings.TrimPrefix(path, "/api/")
	segments := strings.Split(trimmed, "/")
	resource = segments[0]
	if len(segments) > 1 {
		args = segments[1:]
	}
	return resource, args
}

// routeResult runs a matched route's business logic and returns its
// outcome without assuming anything about how that outcome reaches the
// client — handleAPI writes it straight to an http.ResponseWriter,
// dispatchWS wraps it in a response envelope over the client's send
// queue.
func (s *Server) routeResult(resource string, args []string, query url.Values, body []byte, client *Client) apiResult {
	switch resource {
	case "handshake":
		return s.doHandshake(body)
	case "version":
		return s.doVersion()
	case "buffers":
		return s.doBuffers(args, query)
	case "hotlist":
		return s.doHotlist()
	case "completion":
		return s.doCompletion(body)
	case "input":
		return s.doInput(body)
	case "ping":
		return s.doPing(body)
	case "sync":
		return s.doSync(client, body)
	default:
		return errResult(http.StatusNotFound, "Resource not found")
	}
}

// authenticate implements HTTP Basic auth (plain or hashed), optionally
// an additional TOTP query parameter. On success it returns the Client
// for this connection — upgrading to WebSocket first if the request asks
// for it — on failure it writes 401 itself.
func (s *Server) authenticate(w http.ResponseWriter, r *http.Request) (*Client, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Basic "
	if !strings.HasPrefix(header, prefix) {
		writeError(w, http.StatusUnauthorized, "Missing password")
		return nil, false
	}
	decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(header, prefix))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return nil, false
	}
	cred, err := auth.ParseAuthorizationValue(string(decoded))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return nil, false
	}

	configured, _ := s.Config.Get("relay.network.password")
	ok := false
	if cred.Plain {
		ok = auth.VerifyPlain(cred.Password, configured)
	} else {
		ok, _ = auth.VerifyHashed(cred.Algo, cred.Salt, cred.Iterations, cred.HexDigest, configured)
	}
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid password")
		return nil, false
	}

	if s.TOTPSecret != "" {
		if !auth.VerifyTOTP(s.TOTPSecret, r.URL.Query().Get("totp"), time.Now()) {
			writeError(w, http.StatusUnauthorized, "Invalid password")
			return nil, false
		}
	}

	if websocket.IsWebSocketUpgrade(r) {
		return s.upgradeToWebSocket(w, r)
	}

	c := newClient(s.Log)
	c.setState(connected)
	return c, true
}

func (s *Server) upgradeToWebSocket(w http.ResponseWriter, r *http.Request) (*Client, bool) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return nil, false
	}
	c := newClient(s.Log)
	c.attachWebSocket(conn)
	c.setState(connected)
	c.syncColors = api.ColorAnsi

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()

	go s.readPump(c, conn)
	return c, true
}

// readPump owns the WebSocket connection's read side: every text frame is
// a request envelope, dispatched through the same routeResult logic the
// HTTP path uses and answered with a response envelope pushed onto the
// client's send queue, never by writing to the (already-hijacked)
// http.ResponseWriter.
func (s *Server) readPump(c *Client, conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
		c.Close()
	}()
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		s.dispatchWS(c, data)
	}
}

func (s *Server) dispatchWS(c *Client, data []byte) {
	var req apiproto.RequestEnvelope
	if err := json.Unmarshal(data, &req); err != nil {
		s.deliverWS(c, "", nil, nil, errResult(http.StatusBadRequest, "Bad request: invalid JSON"))
		return
	}

	parts := strings.SplitN(req.Request, " ", 2)
	if len(parts) != 2 {
		s.deliverWS(c, req.Request, req.RequestID, req.Body, errResult(http.StatusBadRequest, "Bad request"))
		return
	}
	method, rawPath := parts[0], parts[1]

	u, err := url.Parse(rawPath)
	if err != nil {
		s.deliverWS(c, req.Request, req.RequestID, req.Body, errResult(http.StatusBadRequest, "Bad request"))
		return
	}

	resource, args := splitResourcePath(u.Path)
	if _, err := api.MatchRoute(method, resource, len(args)); err != nil {
		s.deliverWS(c, req.Request, req.RequestID, req.Body, errResult(http.StatusNotFound, "Resource not found"))
		return
	}

	res := s.routeResult(resource, args, u.Query(), req.Body, c)
	s.deliverWS(c, req.Request, req.RequestID, req.Body, res)
}

// deliverWS builds the §6 response envelope for res and enqueues it on
// client's send queue. message mirrors the HTTP status line's reason
// phrase (scenario: a 204 carries "No Content"), so it's derived from the
// same table net/http already uses for the HTTP path.
func (s *Server) deliverWS(client *Client, request string, requestID *string, requestBody json.RawMessage, res apiResult) {
	env := apiproto.ResponseEnvelope{
		Code:        res.Status,
		Message:     http.StatusText(res.Status),
		Request:     request,
		RequestBody: requestBody,
		RequestID:   requestID,
		Body:        res.Body,
	}
	if res.BodyType != "" {
		bodyType := res.BodyType
		env.BodyType = &bodyType
	}
	out, err := json.Marshal(env)
	if err != nil {
		return
	}
	client.Enqueue(out)
}

// deliverHTTP writes res directly as an HTTP response: no envelope, just
// the status line and, for anything but a no-content result, a JSON body.
func deliverHTTP(w http.ResponseWriter, res apiResult) {
	if res.Status == http.StatusNoContent {
		w.WriteHeader(res.Status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.Status)
	json.NewEncoder(w).Encode(res.Body)
}

func (s *Server) doHandshake(body []byte) apiResult {
	var req apiproto.HandshakeRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return errResult(http.StatusBadRequest, "Bad request: invalid JSON")
		}
	}

	allowedRaw, _ := s.Config.Get("relay.network.password_hash_algo")
	allowed := auth.ParseAlgoList(allowedRaw)
	offered := make([]auth.Algo, 0, len(req.PasswordHashAlgo))
	for _, a := range req.PasswordHashAlgo {
		offered = append(offered, auth.Algo(a))
	}
	chosen := auth.Strongest(offered, allowed)

	iterations := s.Config.GetInt("relay.network.password_hash_iterations", 100000)
	totpSecret, _ := s.Config.Get("relay.network.totp_secret")

	return apiResult{
		Status:   http.StatusOK,
		BodyType: "handshake",
		Body: apiproto.HandshakeResponse{
			PasswordHashAlgo:       string(chosen),
			PasswordHashIterations: iterations,
			TOTP:                   totpSecret != "",
		},
	}
}

func (s *Server) doVersion() apiResult {
	return apiResult{
		Status:   http.StatusOK,
		BodyType: "version",
		Body: apiproto.VersionResponse{
			WeechatVersion:        weechatVersion,
			WeechatVersionGit:     weechatVersion,
			WeechatVersionNumber:  weechatVersionNumber,
			RelayAPIVersion:       relayAPIVersion,
			RelayAPIVersionNumber: relayAPIVersionNumber,
		},
	}
}

func (s *Server) doBuffers(args []string, query url.Values) apiResult {
	mode := colorModeFromValues(query)

	if len(args) == 0 {
		buffers := s.Host.Buffers()
		out := make([]apiproto.Buffer, 0, len(buffers))
		for _, b := range buffers {
			out = append(out, api.Buffer(b, mode, false, false))
		}
		return apiResult{Status: http.StatusOK, BodyType: "buffer", Body: out}
	}

	b, ok := s.Host.Buffer(args[0])
	if !ok {
		return errResult(http.StatusNotFound, fmt.Sprintf("Buffer %q not found", args[0]))
	}

	if len(args) == 1 {
		return apiResult{Status: http.StatusOK, BodyType: "buffer", Body: api.Buffer(b, mode, true, true)}
	}

	switch args[1] {
	case "lines":
		lines := selectLines(b.Lines, query.Get("lines"))
		return apiResult{Status: http.StatusOK, BodyType: "line", Body: api.Lines(lines, mode)}
	case "nicks":
		if b.NicklistRoot == nil {
			return apiResult{Status: http.StatusOK, BodyType: "nick_group", Body: nil}
		}
		return apiResult{Status: http.StatusOK, BodyType: "nick_group", Body: api.NickGroup(b.NicklistRoot, mode)}
	default:
		return errResult(http.StatusNotFound, fmt.Sprintf("Sub-resource of buffers not found: %q", args[1]))
	}
}

// selectLines implements the "lines" query parameter: 0 (collection
// default) returns nothing extra here since the collection route never
// reaches this, a positive N returns the first N, a negative N the last
// |N|, and an empty/huge value (the lines sub-resource default) returns
// everything.
func selectLines(lines []*host.Line, nParam string) []*host.Line {
	if nParam == "" {
		return lines
	}
	n, err := strconv.Atoi(nParam)
	if err != nil {
		return lines
	}
	switch {
	case n == 0:
		return nil
	case n > 0:
		if n > len(lines) {
			return lines
		}
		return lines[:n]
	default:
		abs := -n
		if abs > len(lines) {
			return lines
		}
		return lines[len(lines)-abs:]
	}
}

func (s *Server) doHotlist() apiResult {
	return apiResult{Status: http.StatusOK, BodyType: "hotlist", Body: api.Hotlist(s.Host.Hotlist())}
}

func (s *Server) doCompletion(body []byte) apiResult {
	var req apiproto.CompletionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errResult(http.StatusBadRequest, "Bad request")
	}
	bufferID, err := resolveBufferID(s.Host, req.BufferID, req.BufferName)
	if err != nil {
		return errResult(http.StatusNotFound, err.Error())
	}
	result, err := s.Host.Completion(bufferID, req.Command, req.Position)
	if err != nil {
		return errResult(http.StatusBadRequest, err.Error())
	}
	return apiResult{Status: http.StatusOK, BodyType: "completion", Body: api.CompletionResult(result)}
}

func (s *Server) doInput(body []byte) apiResult {
	var req apiproto.InputRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return errResult(http.StatusBadRequest, "Bad request")
	}
	bufferID, err := resolveBufferID(s.Host, req.BufferID, req.BufferName)
	if err != nil {
		return errResult(http.StatusNotFound, err.Error())
	}

	if allowlist, _ := s.Config.Get("relay.network.commands"); allowlist != "" {
		if !commandAllowed(allowlist, req.Command) {
			return errResult(http.StatusForbidden, "Command not allowed")
		}
	}

	h := s.Host
	time.AfterFunc(inputExecDelay, func() {
		h.ExecuteInput(bufferID, req.Command)
	})
	return apiResult{Status: http.StatusNoContent}
}

func commandAllowed(allowlist, command string) bool {
	name := strings.TrimPrefix(strings.Fields(command)[0], "/")
	for _, allowed := range strings.Split(allowlist, ",") {
		if strings.TrimSpace(allowed) == name {
			return true
		}
	}
	return false
}

func (s *Server) doPing(body []byte) apiResult {
	var req apiproto.PingRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return errResult(http.StatusBadRequest, "Bad request: invalid JSON")
		}
	}
	if req.Data == "" {
		return apiResult{Status: http.StatusNoContent}
	}
	return apiResult{Status: http.StatusOK, BodyType: "ping", Body: apiproto.PingResponse{Data: req.Data}}
}

func (s *Server) doSync(client *Client, body []byte) apiResult {
	if client == nil || client.wsConn() == nil {
		return errResult(http.StatusForbidden, "Sync resource is available only with a websocket connection")
	}

	var req apiproto.SyncRequest
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return errResult(http.StatusBadRequest, "Bad request: invalid JSON")
		}
	}

	syncOn := boolOr(req.Sync, true)
	nicks := boolOr(req.Nicks, true)
	input := boolOr(req.Input, true)
	colors := api.ColorAnsi
	if req.Colors != nil {
		colors = api.ColorMode(*req.Colors)
	}

	client.mu.Lock()
	client.syncEnabled = syncOn
	client.syncNicks = nicks
	client.syncInput = input
	client.syncColors = colors
	client.mu.Unlock()

	if syncOn {
		s.installSubscriptions(client, nicks, input)
	} else {
		client.mu.Lock()
		subs := client.unsubscribers
		client.unsubscribers = nil
		client.mu.Unlock()
		for _, unsub := range subs {
			unsub()
		}
	}

	return apiResult{Status: http.StatusNoContent}
}

func (c *Client) wsConn() *websocket.Conn {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws
}

// installSubscriptions wires the client's send queue to the host's
// signal fan-out, filtering nicklist and input-text-changed
// signals per the client's nicks/input sync flags.
func (s *Server) installSubscriptions(client *Client, nicks, input bool) {
	signals := []string{
		host.SignalBufferOpened, host.SignalBufferTypeChanged, host.SignalBufferMoved,
		host.SignalBufferMerged, host.SignalBufferUnmerged, host.SignalBufferHidden,
		host.SignalBufferUnhidden, host.SignalBufferRenamed, host.SignalBufferTitleChanged,
		host.SignalBufferModesChanged, host.SignalBufferLocalvarSet, host.SignalBufferLocalvarChange,
		host.SignalBufferLocalvarDel, host.SignalBufferCleared, host.SignalBufferClosing,
		host.SignalBufferClosed, host.SignalBufferLineAdded, host.SignalUpgrade, host.SignalUpgradeEnded,
	}
	if nicks {
		signals = append(signals,
			host.SignalNicklistGroupAdded, host.SignalNicklistGroupChanged, host.SignalNicklistGroupRemoving,
			host.SignalNicklistNickAdded, host.SignalNicklistNickChanged, host.SignalNicklistNickRemoving,
		)
	}
	if input {
		signals = append(signals, host.SignalInputTextChanged)
	}

	for _, signal := range signals {
		sig := signal
		unsub := s.Host.Subscribe(sig, func(ev host.Event) {
			client.mu.Lock()
			mode := client.syncColors
			client.mu.Unlock()
			client.Enqueue(s.encodeEvent(ev, mode))
		})
		client.addUnsubscriber(unsub)
	}
}

// encodeEvent builds the §4.6/§6 event envelope for a host signal: code 0,
// the signal name doubling as message and event_name, the buffer_id this
// event is scoped to (-1 when none), and a body_type/body pair keyed off
// which of Event's payload fields is populated.
func (s *Server) encodeEvent(ev host.Event, mode api.ColorMode) []byte {
	env := apiproto.EventEnvelope{
		Message:   ev.Signal,
		EventName: ev.Signal,
		BufferID:  -1,
	}

	bodyType := func(t string) *string { return &t }

	switch {
	case ev.Signal == host.SignalBufferClosed:
		env.BufferID = ev.ClosedBufferID
		env.Body = nil
	case ev.Buffer != nil:
		env.BodyType = bodyType("buffer")
		env.BufferID = ev.Buffer.ID
		env.Body = api.Buffer(ev.Buffer, mode, false, false)
	case ev.Line != nil:
		env.BodyType = bodyType("line")
		env.BufferID = ev.BufferID
		env.Body = api.Line(ev.Line, mode)
	case ev.NickGroup != nil:
		env.BodyType = bodyType("nick_group")
		env.BufferID = ev.BufferID
		env.Body = api.NickGroup(ev.NickGroup, mode)
	case ev.Nick != nil:
		env.BodyType = bodyType("nick")
		env.BufferID = ev.BufferID
		env.Body = api.Nick(ev.Nick, mode)
	default:
		// upgrade / upgrade_ended: no buffer, no body.
		env.Body = nil
	}

	out, err := json.Marshal(env)
	if err != nil {
		return []byte(`{"code":0,"message":"` + ev.Signal + `","event_name":"` + ev.Signal + `","buffer_id":-1,"body_type":null,"body":null}`)
	}
	return out
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}

func resolveBufferID(h host.Host, id *int64, name string) (int64, error) {
	if id != nil {
		if _, ok := h.Buffer(strconv.FormatInt(*id, 10)); !ok {
			return 0, fmt.Errorf("Buffer %q not found", strconv.FormatInt(*id, 10))
		}
		return *id, nil
	}
	b, ok := h.Buffer(name)
	if !ok {
		return 0, fmt.Errorf("Buffer %q not found", name)
	}
	return b.ID, nil
}

func colorModeFromValues(query url.Values) api.ColorMode {
	v := query.Get("colors")
	if v == "" {
		return api.ColorAnsi
	}
	return api.ColorMode(v)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	writeJSON(w, status, apiproto.ErrorResponse{Error: message})
}
