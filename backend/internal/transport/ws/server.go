package ws

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"solar-system/backend/internal/config"
	"solar-system/backend/internal/game"
	"solar-system/backend/internal/session"
)

const (
	DefaultPingInterval = 2 * time.Second // Интервал отправки пингов
	maxMessageSize      = 64 * 1024       // Ограничение на размер входящего сообщения
)

// Причины отказа, передаются в Hooks.OnRejected
const (
	RejectConnLimit  = "conn_limit"
	RejectInputRate  = "input_rate"
	RejectInboxFull  = "inbox_full"
	RejectBadMessage = "bad_message"
)

// Hooks необязательные обработчики событий сервера, для метрик
type Hooks struct {
	OnConnect    func()
	OnDisconnect func()
	OnTick       func(time.Duration)
	OnRejected   func(reason string)
}

// Options параметры WebSocket сервера
type Options struct {
	Catalog        *config.Catalog
	TickRate       int
	BroadcastEvery int
	MaxConnsPerIP  int
	InputRate      float64
	InputBurst     int
	Epoch          time.Time
	Seed           uint64
	PingInterval   time.Duration
	Observer       session.Observer
	Hooks          Hooks
	Logger         *log.Logger

	// Лог сессий и их циклов, по умолчанию Logger
	SessionLogger *log.Logger
}

// WSServer создает по сессии и игровому циклу на каждое соединение
type WSServer struct {
	upgrader    websocket.Upgrader
	opts        Options
	logger      *log.Logger
	serializer  *SceneSerializer
	connLimiter *ConnLimiter

	ctx    context.Context
	cancel context.CancelFunc

	connections   map[string]*Connection
	connectionsMu sync.RWMutex
	paused        bool // под connectionsMu
	nextID        atomic.Uint64
	wg            sync.WaitGroup
}

// NewWSServer создает новый экземпляр WebSocket сервера
func NewWSServer(opts Options) *WSServer {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	opts.Logger = logger
	if opts.SessionLogger == nil {
		opts.SessionLogger = logger
	}
	if opts.TickRate <= 0 {
		opts.TickRate = 30
	}
	if opts.BroadcastEvery <= 0 {
		opts.BroadcastEvery = 1
	}
	if opts.PingInterval == 0 {
		opts.PingInterval = DefaultPingInterval
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WSServer{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		opts:        opts,
		logger:      logger,
		serializer:  NewSceneSerializer(logger),
		connLimiter: NewConnLimiter(opts.MaxConnsPerIP),
		ctx:         ctx,
		cancel:      cancel,
		connections: make(map[string]*Connection),
	}
}

// HandleWS обрабатывает входящие WebSocket соединения
func (s *WSServer) HandleWS(w http.ResponseWriter, r *http.Request) {
	if s.ctx.Err() != nil {
		http.Error(w, "server is shutting down", http.StatusServiceUnavailable)
		return
	}

	ip := clientIP(r)
	if !s.connLimiter.Acquire(ip) {
		s.logger.Printf("[WSServer] Превышен лимит соединений для %s", ip)
		s.reject(RejectConnLimit)
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}
	defer s.connLimiter.Release(ip)

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WSServer] Ошибка апгрейда соединения: %v", err)
		return
	}
	conn.SetReadLimit(maxMessageSize)

	// Создаем потокобезопасную обертку для WebSocket соединения
	safeConn := NewSafeWriter(conn)
	defer safeConn.Close()

	s.wg.Add(1)
	defer s.wg.Done()

	c, err := s.openConnection(ip, safeConn)
	if err != nil {
		s.logger.Printf("[WSServer] Не удалось открыть сессию для %s: %v", ip, err)
		_ = safeConn.WriteJSON(NewInfoMessage("session error"))
		return
	}
	defer s.closeConnection(c)

	s.logger.Printf("[WSServer] Новое соединение %s от %s", c.ID, conn.RemoteAddr())

	done := make(chan struct{})
	defer close(done)
	if s.opts.PingInterval > 0 {
		go s.startPing(safeConn, done)
	}

	s.readLoop(c, conn)

	s.logger.Printf("[WSServer] Соединение %s закрыто", c.ID)
}

// openConnection создает сессию, отправляет начальное состояние и запускает цикл
func (s *WSServer) openConnection(ip string, safeConn *SafeWriter) (*Connection, error) {
	id := fmt.Sprintf("viewer-%d", s.nextID.Add(1))

	view := config.GetViewConfig()
	sess, err := session.New(id, session.Options{
		Catalog:  s.opts.Catalog,
		View:     view,
		Epoch:    s.opts.Epoch,
		Seed:     s.opts.Seed,
		Logger:   s.opts.SessionLogger,
		Observer: s.opts.Observer,
	})
	if err != nil {
		return nil, err
	}

	// Приветствие и конфигурация до описания сцены
	if err := safeConn.WriteJSON(NewInfoMessage("Connected to solar system server")); err != nil {
		return nil, fmt.Errorf("send welcome: %w", err)
	}
	if err := safeConn.WriteJSON(s.configMessage(id, sess, view)); err != nil {
		return nil, fmt.Errorf("send config: %w", err)
	}
	if err := s.serializer.SendCreate(safeConn, sess.Scene().Graph); err != nil {
		return nil, fmt.Errorf("send scene: %w", err)
	}

	ticker := game.NewGameTicker(s.ctx, s.opts.TickRate, s.opts.SessionLogger)
	c := &Connection{
		ID:      id,
		IP:      ip,
		writer:  safeConn,
		session: sess,
		ticker:  ticker,
		logger:  s.opts.SessionLogger,
	}
	game.RegisterSessionSystems(ticker, sess, c, s.opts.BroadcastEvery, s.opts.SessionLogger)
	if s.opts.Hooks.OnTick != nil {
		ticker.OnTick(s.opts.Hooks.OnTick)
	}

	if err := ticker.Start(); err != nil {
		return nil, err
	}

	s.connectionsMu.Lock()
	s.connections[id] = c
	paused := s.paused
	s.connectionsMu.Unlock()
	if paused {
		ticker.Pause()
	}
	if s.opts.Hooks.OnConnect != nil {
		s.opts.Hooks.OnConnect()
	}
	return c, nil
}

func (s *WSServer) closeConnection(c *Connection) {
	s.connectionsMu.Lock()
	_, ok := s.connections[c.ID]
	delete(s.connections, c.ID)
	s.connectionsMu.Unlock()

	c.ticker.Stop()
	if ok && s.opts.Hooks.OnDisconnect != nil {
		s.opts.Hooks.OnDisconnect()
	}
}

func (s *WSServer) configMessage(id string, sess *session.Session, view config.ViewConfig) *ConfigMessage {
	keys := map[string]string{}
	if s.opts.Catalog != nil {
		keys = s.opts.Catalog.KeyMap()
	} else if cat, err := config.DefaultCatalog(); err == nil {
		keys = cat.KeyMap()
	}
	return &ConfigMessage{
		Type:         MessageTypeConfig,
		SessionID:    id,
		FOV:          view.Camera.FOV,
		Near:         view.Camera.Near,
		Far:          view.Camera.Far,
		TickRate:     s.opts.TickRate,
		TimeScale:    sess.TimeScale(),
		MaxTimeScale: view.Time.MaxScale,
		Keys:         keys,
		AnimationMs:  view.Camera.AnimationDuration.Milliseconds(),
	}
}

// readLoop основной цикл обработки сообщений
func (s *WSServer) readLoop(c *Connection, conn *websocket.Conn) {
	limiter := newInputLimiter(s.opts.InputRate, s.opts.InputBurst)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.logger.Printf("[WSServer] Ошибка чтения %s: %v", c.ID, err)
			}
			return
		}

		if !limiter.Allow() {
			s.reject(RejectInputRate)
			continue
		}

		if err := s.handleMessage(c, data); err != nil {
			s.logger.Printf("[WSServer] %s: %v", c.ID, err)
		}
	}
}

// handleMessage разбирает сообщение и передает событие в сессию
func (s *WSServer) handleMessage(c *Connection, data []byte) error {
	message, err := ParseMessage(data)
	if err != nil {
		s.reject(RejectBadMessage)
		return err
	}

	switch msg := message.(type) {
	case *PingMessage:
		return c.writer.WriteJSON(NewPongMessage(msg.ClientTime))

	case *InputMessage:
		ev, err := msg.ToEvent()
		if err != nil {
			s.reject(RejectBadMessage)
			return err
		}
		if err := c.session.Enqueue(ev); err != nil {
			if errors.Is(err, session.ErrInboxFull) {
				s.reject(RejectInboxFull)
			}
			return err
		}
		// Частые события не подтверждаем
		if msg.Type == MessageTypePointerMove || msg.Type == MessageTypeCameraSync {
			return nil
		}
		return c.writer.WriteJSON(NewAckMessage(msg.Type, msg.ClientTime))
	}

	return fmt.Errorf("%w: %T", ErrUnknownMessageType, message)
}

// startPing запускает периодическую отправку пингов для проверки соединения
func (s *WSServer) startPing(conn *SafeWriter, done <-chan struct{}) {
	ticker := time.NewTicker(s.opts.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteJSON(NewPingMessage()); err != nil {
				return
			}
		}
	}
}

func (s *WSServer) reject(reason string) {
	if s.opts.Hooks.OnRejected != nil {
		s.opts.Hooks.OnRejected(reason)
	}
}

// SetPaused приостанавливает или возобновляет циклы всех сессий.
// Новые соединения подключаются в текущем режиме.
func (s *WSServer) SetPaused(paused bool) {
	s.connectionsMu.Lock()
	s.paused = paused
	conns := s.sortedConnectionsLocked()
	s.connectionsMu.Unlock()

	for _, c := range conns {
		if paused {
			c.ticker.Pause()
		} else {
			c.ticker.Resume()
		}
	}
	s.logger.Printf("[WSServer] Пауза симуляции: %v (сессий: %d)", paused, len(conns))
}

// Paused сообщает, приостановлена ли симуляция
func (s *WSServer) Paused() bool {
	s.connectionsMu.RLock()
	defer s.connectionsMu.RUnlock()
	return s.paused
}

// ConnectionCount возвращает число активных соединений
func (s *WSServer) ConnectionCount() int {
	s.connectionsMu.RLock()
	defer s.connectionsMu.RUnlock()
	return len(s.connections)
}

// Stats статистика циклов всех соединений
func (s *WSServer) Stats() map[string]interface{} {
	s.connectionsMu.RLock()
	paused := s.paused
	conns := s.sortedConnectionsLocked()
	s.connectionsMu.RUnlock()

	perConn := make(map[string]interface{}, len(conns))
	for _, c := range conns {
		perConn[c.ID] = c.Stats()
	}
	return map[string]interface{}{
		"connections": len(conns),
		"paused":      paused,
		"sessions":    perConn,
	}
}

// snapshotConnections копия списка соединений, упорядоченная по id
func (s *WSServer) snapshotConnections() []*Connection {
	s.connectionsMu.RLock()
	defer s.connectionsMu.RUnlock()
	return s.sortedConnectionsLocked()
}

func (s *WSServer) sortedConnectionsLocked() []*Connection {
	ids := make([]string, 0, len(s.connections))
	for id := range s.connections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	conns := make([]*Connection, 0, len(ids))
	for _, id := range ids {
		conns = append(conns, s.connections[id])
	}
	return conns
}

// Shutdown закрывает все соединения и ждет завершения обработчиков
func (s *WSServer) Shutdown(ctx context.Context) error {
	s.cancel()

	s.connectionsMu.RLock()
	for _, c := range s.connections {
		_ = c.writer.Close()
	}
	s.connectionsMu.RUnlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Printf("[WSServer] Все соединения закрыты")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
