package handlers

import (
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/ohadf2015/boggle-new-sub010/internal/config"
	"github.com/ohadf2015/boggle-new-sub010/internal/constants"
	"github.com/ohadf2015/boggle-new-sub010/internal/game"
	"github.com/ohadf2015/boggle-new-sub010/internal/profile"
	"github.com/ohadf2015/boggle-new-sub010/internal/ratelimit"
	"github.com/ohadf2015/boggle-new-sub010/internal/transport"
	"github.com/ohadf2015/boggle-new-sub010/internal/util"
)

var roomCodePattern = regexp.MustCompile(`^[A-Z0-9]{4,8}$`)

// Handler owns the websocket entrypoint and the REST side routes.
type Handler struct {
	cfg       *config.Config
	registry  *game.Registry
	gate      *ratelimit.Gate
	profile   *profile.Client
	upgrader  websocket.Upgrader
	startTime time.Time
}

func New(cfg *config.Config, registry *game.Registry, gate *ratelimit.Gate, prof *profile.Client) *Handler {
	return &Handler{
		cfg:      cfg,
		registry: registry,
		gate:     gate,
		profile:  prof,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		startTime: time.Now(),
	}
}

func (h *Handler) Register(router *gin.Engine) {
	router.GET("/ws", h.WebsocketHandler)
	router.GET("/healthz", h.HealthzHandler)
	router.GET("/rooms", h.RoomsHandler)
}

func (h *Handler) HealthzHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": util.FormatUptime(time.Since(h.startTime)),
		"rooms":  h.registry.Count(),
	})
}

func (h *Handler) RoomsHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"rooms": h.registry.Descriptions()})
}

// WebsocketHandler upgrades the connection and runs its read loop until the
// client goes away, then reconciles the disconnect with the player's room.
func (h *Handler) WebsocketHandler(c *gin.Context) {
	socket, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		util.LogWarn("Websocket upgrade failed for %s: %v", c.ClientIP(), err)
		return
	}
	conn := transport.NewConn(socket, c.ClientIP())
	go conn.WritePump()

	conn.ReadLoop(func(raw []byte) {
		h.dispatch(conn, raw)
	})

	h.registry.HandleDisconnect(conn.ID)
	h.gate.Forget(conn.ID)
}

// dispatch is the control path for one inbound frame: rate limit, decode,
// then the exhaustive message switch. A panic while handling one room's
// event evicts that room only.
func (h *Handler) dispatch(conn *transport.Conn, raw []byte) {
	switch h.gate.Check(conn.ID, conn.Origin, time.Now()) {
	case ratelimit.Throttle:
		conn.Send(game.EvtRateLimited, gin.H{
			"code":    constants.ErrCodeRateLimited,
			"blockMs": h.cfg.BlockDuration.Milliseconds(),
		})
		return
	case ratelimit.Drop:
		return
	}

	msg, err := transport.Decode(raw)
	if err != nil {
		h.sendError(conn, constants.ErrCodeInvalidPayload, err.Error())
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			util.LogWarn("Panic handling %T from connection %s: %v", msg, conn.ID, rec)
			if room := h.registry.RoomByConnection(conn.ID); room != nil {
				room.NotifyClosing(constants.ErrCodeInternalError, "room evicted after internal fault")
				h.registry.DeleteRoom(room.Code)
			}
			h.sendError(conn, constants.ErrCodeInternalError, "internal error")
		}
	}()

	switch m := msg.(type) {
	case transport.CreateGame:
		h.handleCreateGame(conn, m)
	case transport.Join:
		h.handleJoin(conn, m)
	case transport.Rejoin:
		h.handleRejoin(conn, m)
	case transport.Leave:
		h.handleLeave(conn)
	case transport.StartGame:
		h.handleStartGame(conn, m)
	case transport.EndGame:
		h.handleEndGame(conn)
	case transport.SubmitWord:
		h.handleSubmitWord(conn, m)
	case transport.SubmitWordVote:
		h.handleSubmitWordVote(conn, m)
	case transport.AddBot:
		h.handleAddBot(conn, m)
	case transport.RemoveBot:
		h.handleRemoveBot(conn, m)
	case transport.CreateTournament:
		h.handleCreateTournament(conn, m)
	case transport.StartTournamentRound:
		h.handleStartTournamentRound(conn, m)
	case transport.CancelTournament:
		h.handleCancelTournament(conn)
	case transport.PresenceHeartbeat:
		h.handleHeartbeat(conn, m)
	case transport.HostKeepAlive:
		h.handleHostKeepAlive(conn)
	case transport.GetActiveRooms:
		conn.Send("activeRooms", gin.H{"rooms": h.registry.Descriptions()})
	default:
		h.sendError(conn, constants.ErrCodeInvalidPayload, "unhandled message kind")
	}
}

func (h *Handler) sendError(conn *transport.Conn, code, message string) {
	conn.Send(game.EvtError, gin.H{"code": code, "message": message})
}

// roomAndUser resolves the caller's seat; every in-room message needs it.
func (h *Handler) roomAndUser(conn *transport.Conn) (*game.Room, string, bool) {
	room := h.registry.RoomByConnection(conn.ID)
	if room == nil {
		h.sendError(conn, constants.ErrCodeGameNotFound, "not in a room")
		return nil, "", false
	}
	username, ok := h.registry.UsernameByConnection(conn.ID)
	if !ok {
		h.sendError(conn, constants.ErrCodeGameNotFound, "not in a room")
		return nil, "", false
	}
	return room, username, true
}

func validUsername(username string) bool {
	return username != "" && len(username) <= constants.MaxUsernameLength
}

// generateRoomCode makes a short uppercase code for hosts that do not bring
// their own.
func generateRoomCode() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return strings.ToUpper(raw[:constants.RoomCodeLength])
}

func (h *Handler) handleCreateGame(conn *transport.Conn, m transport.CreateGame) {
	code := strings.ToUpper(strings.TrimSpace(m.GameCode))
	if code == "" {
		code = generateRoomCode()
	}
	if !roomCodePattern.MatchString(code) || !validUsername(m.HostUsername) || len(m.RoomName) > constants.MaxRoomNameLength {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "bad game code or username")
		return
	}
	room, err := h.registry.CreateRoom(code, m.HostUsername, conn.ID, conn, game.RoomOptions{
		DisplayName: m.RoomName,
		Language:    m.Language,
		Avatar:      m.Avatar,
	})
	if err == game.ErrRoomExists {
		h.sendError(conn, constants.ErrCodeGameAlreadyExists, "game code already in use")
		return
	}
	if err != nil {
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
		return
	}
	conn.Send(game.EvtJoined, gin.H{
		"gameCode":  code,
		"isHost":    true,
		"users":     room.Players(),
		"roomState": room.Snapshot(),
	})
}

func (h *Handler) handleJoin(conn *transport.Conn, m transport.Join) {
	code := strings.ToUpper(strings.TrimSpace(m.GameCode))
	if !roomCodePattern.MatchString(code) || !validUsername(m.Username) {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "bad game code or username")
		return
	}
	room, err := h.registry.AddPlayer(code, m.Username, conn.ID, conn, game.RoomOptions{Avatar: m.Avatar})
	switch err {
	case nil:
	case game.ErrRoomNotFound:
		h.sendError(conn, constants.ErrCodeGameNotFound, "no such game")
		return
	case game.ErrRoomFull:
		h.sendError(conn, constants.ErrCodeGameFull, "game is full")
		return
	case game.ErrDuplicateUsername:
		h.sendError(conn, constants.ErrCodeInvalidPayload, "username already taken")
		return
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
		return
	}

	event := game.EvtJoined
	if room.Phase() == game.PhaseInProgress {
		event = "joinedAsSpectator"
	}
	conn.Send(event, gin.H{
		"gameCode":  code,
		"isHost":    false,
		"users":     room.Players(),
		"roomState": room.Snapshot(),
	})
}

func (h *Handler) handleRejoin(conn *transport.Conn, m transport.Rejoin) {
	code := strings.ToUpper(strings.TrimSpace(m.GameCode))
	if !roomCodePattern.MatchString(code) || !validUsername(m.Username) {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "bad game code or username")
		return
	}
	if _, err := h.profile.VerifyGuestToken(m.GuestToken); err != nil {
		h.sendError(conn, constants.ErrCodeAuthRequired, "invalid guest token")
		return
	}
	snap, err := h.registry.Reconnect(code, m.Username, conn.ID, conn)
	switch err {
	case nil:
	case game.ErrRoomNotFound, game.ErrPlayerNotFound, game.ErrSessionExpired:
		// A session past its grace window looks like a missing game; the
		// client must rejoin fresh.
		h.sendError(conn, constants.ErrCodeGameNotFound, "session expired, join again")
		return
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
		return
	}
	room := h.registry.GetRoom(code)
	if room == nil {
		h.sendError(conn, constants.ErrCodeGameNotFound, "no such game")
		return
	}
	conn.Send(game.EvtJoined, gin.H{
		"gameCode":  code,
		"isHost":    room.IsHost(m.Username),
		"users":     room.Players(),
		"roomState": snap,
	})
}

func (h *Handler) handleLeave(conn *transport.Conn) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	h.registry.RemovePlayer(room.Code, username)
}

func (h *Handler) handleStartGame(conn *transport.Conn, m transport.StartGame) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	err := room.StartGame(username, game.StartOptions{
		Grid:          m.LetterGrid,
		TimerSeconds:  m.TimerSeconds,
		Language:      m.Language,
		MinWordLength: m.MinWordLength,
	})
	h.sendLifecycleError(conn, err)
}

func (h *Handler) handleEndGame(conn *transport.Conn) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	if !room.IsHost(username) {
		h.sendError(conn, constants.ErrCodeNotHost, "only the host can end the game")
		return
	}
	h.sendLifecycleError(conn, room.EndGame(game.EventEnd))
}

func (h *Handler) sendLifecycleError(conn *transport.Conn, err error) {
	switch err {
	case nil:
	case game.ErrNotHost:
		h.sendError(conn, constants.ErrCodeNotHost, "host only")
	case game.ErrInvalidTransition:
		h.sendError(conn, constants.ErrCodeGameInProgress, "not possible in the current phase")
	case game.ErrNoTournament:
		h.sendError(conn, constants.ErrCodeInvalidPayload, "no tournament in this room")
	case game.ErrTournamentDone:
		h.sendError(conn, constants.ErrCodeInvalidPayload, "tournament already complete")
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
	}
}

func (h *Handler) handleSubmitWord(conn *transport.Conn, m transport.SubmitWord) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	if m.Word == "" || len(m.Word) > constants.MaxWordLength {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "bad word")
		return
	}
	res, err := room.SubmitWord(username, m.Word)
	if err != nil {
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
		return
	}
	switch res.Outcome {
	case game.WordAccepted, game.WordNeedsValidation:
		// The room already notified everyone who needs to know. The client's
		// own combo counter is advisory; flag drift so desyncs are traceable.
		if m.ComboLevel != res.ComboLevel {
			util.LogInfo("Combo drift for %s: client sent %d, server computed %d", username, m.ComboLevel, res.ComboLevel)
		}
	case game.WordAlreadyFound:
		conn.Send(game.EvtWordAlreadyFound, gin.H{"word": res.Word, "reason": constants.RejectAlreadyFound})
	case game.WordNotOnBoard:
		conn.Send(game.EvtWordNotOnBoard, gin.H{"word": res.Word, "reason": constants.RejectNotOnBoard})
	case game.WordTooShort:
		conn.Send(game.EvtWordRejected, gin.H{"word": res.Word, "reason": constants.RejectTooShort})
	case game.WordNotInProgress, game.WordPlayerDisconnected:
		conn.Send(game.EvtWordRejected, gin.H{"word": res.Word, "reason": constants.RejectNotStarted})
	}
}

func (h *Handler) handleSubmitWordVote(conn *transport.Conn, m transport.SubmitWordVote) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	if m.VoteType != "valid" && m.VoteType != "invalid" {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "voteType must be valid or invalid")
		return
	}
	if err := room.VoteWord(username, m.Word, m.VoteType == "valid"); err != nil {
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
	}
}

func (h *Handler) handleAddBot(conn *transport.Conn, m transport.AddBot) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	bot, err := room.AddBot(username, m.Difficulty)
	switch err {
	case nil:
		conn.Send("botAdded", gin.H{"botId": bot.ID, "username": bot.Username, "difficulty": bot.Difficulty})
	case game.ErrNotHost:
		h.sendError(conn, constants.ErrCodeNotHost, "only the host can add bots")
	case game.ErrRoomFull, game.ErrTooManyBots:
		h.sendError(conn, constants.ErrCodeGameFull, "no room for another bot")
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
	}
}

func (h *Handler) handleRemoveBot(conn *transport.Conn, m transport.RemoveBot) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	switch err := room.RemoveBot(username, m.BotID); err {
	case nil:
		conn.Send("botRemoved", gin.H{"botId": m.BotID})
	case game.ErrNotHost:
		h.sendError(conn, constants.ErrCodeNotHost, "only the host can remove bots")
	case game.ErrBotNotFound:
		h.sendError(conn, constants.ErrCodeInvalidPayload, "no such bot")
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
	}
}

func (h *Handler) handleCreateTournament(conn *transport.Conn, m transport.CreateTournament) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	if m.TotalRounds < 1 || m.TotalRounds > 20 {
		h.sendError(conn, constants.ErrCodeInvalidPayload, "totalRounds out of range")
		return
	}
	_, err := room.CreateTournament(username, m.Name, m.TotalRounds)
	switch err {
	case nil:
	case game.ErrNotHost:
		h.sendError(conn, constants.ErrCodeNotHost, "only the host can create tournaments")
	case game.ErrGameInProgress:
		h.sendError(conn, constants.ErrCodeGameInProgress, "finish the current game first")
	default:
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
	}
}

func (h *Handler) handleStartTournamentRound(conn *transport.Conn, m transport.StartTournamentRound) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	err := room.StartNextRound(username, game.StartOptions{
		Grid:          m.LetterGrid,
		TimerSeconds:  m.TimerSeconds,
		Language:      m.Language,
		MinWordLength: m.MinWordLength,
	})
	h.sendLifecycleError(conn, err)
}

func (h *Handler) handleCancelTournament(conn *transport.Conn) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	h.sendLifecycleError(conn, room.CancelTournament(username))
}

func (h *Handler) handleHeartbeat(conn *transport.Conn, m transport.PresenceHeartbeat) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	recovery, err := room.Heartbeat(username, m.IsWindowFocused)
	if err != nil {
		h.sendError(conn, constants.ErrCodeInternalError, err.Error())
		return
	}
	if recovery {
		conn.Send("heartbeatRecovered", gin.H{"username": username})
	}
}

func (h *Handler) handleHostKeepAlive(conn *transport.Conn) {
	room, username, ok := h.roomAndUser(conn)
	if !ok {
		return
	}
	if err := room.HostKeepAlive(username); err == game.ErrNotHost {
		h.sendError(conn, constants.ErrCodeNotHost, "host only")
	}
}
