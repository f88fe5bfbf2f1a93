// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"os/user"
	"strconv"

	"github.com/rs/zerolog"

	"gitlab.com/postmarketOS/nmeaterm/internal/pool"
)

// Server shares the raw NMEA stream with local clients over a unix socket.
type Server struct {
	socket    string
	sockGroup string
	connPool  *pool.Pool
	sock      net.Listener
	log       zerolog.Logger
}

// Create a new Server. Lines handed to connPool.Share are written to every
// connected client. An empty sockGroup leaves the socket group unchanged.
func New(socket string, sockGroup string, connPool *pool.Pool, log zerolog.Logger) (s *Server) {
	s = &Server{
		socket:    socket,
		sockGroup: sockGroup,
		connPool:  connPool,
		log:       log,
	}

	return
}

// Start listens on the socket and accepts clients in the background.
func (s *Server) Start() (err error) {
	if err := os.RemoveAll(s.socket); err != nil {
		return fmt.Errorf("server.Start(): %w", err)
	}

	s.sock, err = net.Listen("unix", s.socket)
	if err != nil {
		return fmt.Errorf("server.Start(): %w", err)
	}

	if err := s.setPermissions(); err != nil {
		s.sock.Close()
		return fmt.Errorf("server.Start(): %w", err)
	}

	s.log.Info().Str("socket", s.socket).Msg("sharing NMEA stream")
	go s.connectionHandler()

	return nil
}

func (s *Server) setPermissions() error {
	if err := os.Chmod(s.socket, 0660); err != nil {
		return err
	}

	if s.sockGroup == "" {
		return nil
	}

	group, err := user.LookupGroup(s.sockGroup)
	if err != nil {
		return err
	}

	gid, err := strconv.ParseInt(group.Gid, 10, 32)
	if err != nil {
		return err
	}

	return os.Chown(s.socket, -1, int(gid))
}

func (s *Server) Close() error {
	if s.sock == nil {
		return nil
	}
	err := s.sock.Close()
	os.Remove(s.socket)
	return err
}

func (s *Server) connectionHandler() {
	for {
		conn, err := s.sock.Accept()
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				s.log.Error().Err(err).Msg("share socket accept failed")
			}
			return
		}

		client := pool.NewClient(conn)
		select {
		case s.connPool.Register <- client:
		case <-s.connPool.Done():
			conn.Close()
			return
		}

		go s.clientConnection(client)

		s.log.Debug().Msg("share client connected")
	}
}

// Routine run for each client connection
func (s *Server) clientConnection(c *pool.Client) {
	defer c.Conn.Close()

	for msg := range c.Send {
		if _, err := c.Conn.Write(msg); err != nil {
			break
		}
	}

	// the pool closes Send on unregister; unregistering twice is harmless
	select {
	case s.connPool.Unregister <- c:
	case <-s.connPool.Done():
	}
	s.log.Debug().Msg("share client disconnected")
}
