// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

package pool

import (
	"net"
	"sync/atomic"
)

// lines queued per client before new ones are dropped for it
const clientQueue = 64

type Client struct {
	Send chan []byte
	Conn net.Conn
}

func NewClient(conn net.Conn) *Client {
	return &Client{
		Conn: conn,
		Send: make(chan []byte, clientQueue),
	}
}

type Pool struct {
	Register   chan *Client
	Unregister chan *Client
	Clients    map[*Client]bool
	broadcast  chan []byte
	quit       chan struct{}
	count      atomic.Int32
	dropped    atomic.Uint64
}

func New() *Pool {
	return &Pool{
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		Clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, clientQueue),
		quit:       make(chan struct{}),
	}
}

// Start runs the pool until Stop. Only this goroutine touches Clients.
func (p *Pool) Start() {
	for {
		select {
		case c := <-p.Register:
			p.Clients[c] = true
			p.count.Store(int32(len(p.Clients)))
		case c := <-p.Unregister:
			if p.Clients[c] {
				delete(p.Clients, c)
				close(c.Send)
			}
			p.count.Store(int32(len(p.Clients)))
		case msg := <-p.broadcast:
			for c := range p.Clients {
				select {
				case c.Send <- msg:
				default:
					p.dropped.Add(1)
				}
			}
		case <-p.quit:
			for c := range p.Clients {
				delete(p.Clients, c)
				close(c.Send)
			}
			p.count.Store(0)
			return
		}
	}
}

func (p *Pool) Stop() {
	close(p.quit)
}

// Done is closed once Stop was called; nothing reads Register or
// Unregister after that.
func (p *Pool) Done() <-chan struct{} {
	return p.quit
}

// Share queues line for every connected client with a trailing newline. It
// never blocks; the line is dropped when the pool is backed up.
func (p *Pool) Share(line []byte) {
	if p.count.Load() == 0 {
		return
	}
	msg := make([]byte, len(line)+1)
	copy(msg, line)
	msg[len(line)] = '\n'

	select {
	case p.broadcast <- msg:
	default:
		p.dropped.Add(1)
	}
}

// Len is the number of connected clients.
func (p *Pool) Len() int {
	return int(p.count.Load())
}

// Dropped counts lines not delivered because a queue was full.
func (p *Pool) Dropped() uint64 {
	return p.dropped.Load()
}
