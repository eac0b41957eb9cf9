package uds

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"net"
	"os"
	"slices"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/zeptools/gw-litesql/svc"
)

// Service serves line-based admin commands on a unix domain socket.
// Each connection may send `help` or unknown commands repeatedly; it is closed after
// the first known command or `quit`.
type Service struct {
	Ctx        context.Context    // Service Context
	cancel     context.CancelFunc // Service Context CancelFunc
	state      int                // internal service state
	done       chan error         // Shutdown Error Channel
	SocketPath string
	CmdMap     map[string]CmdHnd
	listener   net.Listener
}

// Ensure uds.Service implements svc.Service interface
var _ svc.Service = (*Service)(nil)

func (s *Service) Name() string {
	return "UDSService"
}

func NewService(parentCtx context.Context, sockPath string, cmdMap map[string]CmdHnd) *Service {
	svcCtx, svcCancel := context.WithCancel(parentCtx)
	return &Service{
		Ctx:        svcCtx,
		cancel:     svcCancel,
		state:      svc.StateREADY,
		done:       make(chan error, 1),
		SocketPath: sockPath,
		CmdMap:     cmdMap,
	}
}

// Start the unix socket service in the background.
// Bootstrapping errors are returned immediately.
// Runtime errors are pushed into Done().
func (s *Service) Start() error {
	if s.state != svc.StateREADY {
		return fmt.Errorf("cannot start. not ready")
	}
	// clean up old socket if any
	_ = os.Remove(s.SocketPath)
	listener, err := net.Listen("unix", s.SocketPath)
	if err != nil {
		return fmt.Errorf("listen(%q) failed: %w", s.SocketPath, err)
	}
	s.listener = listener
	// tighten permissions immediately after binding
	if err = os.Chmod(s.SocketPath, 0600); err != nil {
		_ = s.listener.Close()
		_ = os.Remove(s.SocketPath)
		return fmt.Errorf("chmod(%q) failed: %w", s.SocketPath, err)
	}
	s.state = svc.StateRUNNING
	go s.run()
	return nil
}

func (s *Service) Stop() {
	if s.state != svc.StateRUNNING {
		log.Error("[UDS] cannot stop. not running")
		return
	}
	s.cancel()
	s.state = svc.StateSTOPPED
	log.Info("[UDS] service stopped")
}

func (s *Service) Done() <-chan error {
	return s.done
}

func (s *Service) run() {
	go func() {
		<-s.Ctx.Done()
		log.Info("[UDS] stopping")
		if err := s.listener.Close(); err != nil {
			log.Errorf("[UDS] cannot close listener: %v", err)
		}
		// To avoid TOCTOU race, just try removing before checking if it exists.
		if err := os.Remove(s.SocketPath); err != nil && !os.IsNotExist(err) {
			log.Errorf("[UDS] cannot remove socket file: %v", err)
		}
	}()

	log.Infof("[UDS] listening on %q ...", s.SocketPath)
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				log.Info("[UDS] socket closed")
				s.done <- nil // also a clean shutdown
				return
			}
			// transient errors don't kill the loop
			log.Errorf("[UDS] accept failed: %v", err)
			continue
		}
		log.Debug("[UDS] new connection")
		go s.handleConn(conn)
	}
}

func (s *Service) help(w io.Writer) {
	_, _ = fmt.Fprintln(w, "")
	for _, cmdKey := range slices.Sorted(maps.Keys(s.CmdMap)) {
		cmdHnd := s.CmdMap[cmdKey]
		_, _ = fmt.Fprintf(w, "%-36s %s\n", cmdKey+" "+cmdHnd.Usage, cmdHnd.Desc)
	}
	_, _ = fmt.Fprintln(w, "")
}

func (s *Service) handleConn(c net.Conn) {
	connCtx, connCancel := context.WithCancel(s.Ctx)
	defer connCancel()
	go func() {
		<-connCtx.Done()
		_ = c.Close()
	}()

	reader := bufio.NewReader(io.LimitReader(c, 1<<20)) // 1 MB max per line
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Debug("[UDS] client disconnected")
			} else {
				log.Errorf("[UDS] read error: %v", err)
			}
			return
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "quit":
			return
		case "help":
			s.help(c)
			continue
		}
		cmdHnd, ok := s.CmdMap[args[0]]
		if !ok {
			_, _ = fmt.Fprintf(c, "unknown command: %s\n", args[0])
			continue // give another chance
		}
		log.Infof("[UDS] requested command `%s`", strings.Join(args, " "))
		if err = cmdHnd.Fn(connCtx, args[1:], c); err != nil {
			_, _ = fmt.Fprintf(c, "error: %v\n", err)
			log.Warnf("[UDS] command `%s` failed: %v", args[0], err)
		}
		return
	}
}
