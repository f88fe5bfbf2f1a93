// Copyright 2021 Clayton Craft <clayton@craftyguy.net>
// SPDX-License-Identifier: GPL-3.0-or-later

// Package publish forwards position fixes to an MQTT broker as JSON.
package publish

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"gitlab.com/postmarketOS/nmeaterm/internal/nmea"
)

const (
	DefaultTopic    = "nmeaterm/fix"
	DefaultClientID = "nmeaterm"

	connectTimeout = 5 * time.Second
)

type MQTT struct {
	client mqtt.Client
	topic  string
}

// Connect dials broker, e.g. "tcp://localhost:1883".
func Connect(broker, clientID, topic string) (*MQTT, error) {
	if clientID == "" {
		clientID = DefaultClientID
	}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetConnectTimeout(connectTimeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("publish.Connect(): %s: timed out", broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("publish.Connect(): %s: %w", broker, err)
	}

	return New(client, topic), nil
}

// New publishes through an already connected client.
func New(client mqtt.Client, topic string) *MQTT {
	if topic == "" {
		topic = DefaultTopic
	}
	return &MQTT{
		client: client,
		topic:  topic,
	}
}

func (m *MQTT) Topic() string {
	return m.topic
}

// Publish sends f with QoS 0. It does not wait for delivery; only failures
// the client reports straight away are returned.
func (m *MQTT) Publish(f nmea.Fix) error {
	payload, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("publish.Publish(): %w", err)
	}

	token := m.client.Publish(m.topic, 0, false, payload)
	select {
	case <-token.Done():
		if err := token.Error(); err != nil {
			return fmt.Errorf("publish.Publish(): %w", err)
		}
	default:
	}
	return nil
}

func (m *MQTT) Close() {
	m.client.Disconnect(250)
}
