// Command stompcli is a minimal subscriber demo: it loads a config file,
// connects to a broker, subscribes to every configured topic, and
// pretty-prints inbound messages until interrupted.
/*
 * Copyright (c) 2018-2024, NVIDIA CORPORATION. All rights reserved.
 */
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ais-stomp/stompclient/config"
	"github.com/ais-stomp/stompclient/connector"
	"github.com/ais-stomp/stompclient/frame"
	"github.com/ais-stomp/stompclient/internal/nlog"
)

const (
	exitOK         = 0
	exitConnFailed = 1
	exitBadCreds   = 2
	exitGeneric    = 255
)

func main() {
	os.Exit(run())
}

func run() int {
	cfgPath := flag.String("config", "stompcli.json", "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		nlog.Errorf("stompcli: %v", err)
		return exitGeneric
	}

	done := make(chan int, 1)
	var nextSubID int

	c := connector.New(connector.Events{
		OnSubscribe: func(c *connector.Connector) {
			for _, topic := range cfg.TopicNames {
				id := fmt.Sprintf("%d", nextSubID)
				nextSubID++
				c.Send(c.Subscribe(id, topic, ""))
			}
		},
		OnMessage: func(c *connector.Connector, f *frame.Frame) {
			printMessage(f)
		},
		OnRejected: func(c *connector.Connector) {
			nlog.Errorln("stompcli: broker rejected CONNECT")
			done <- exitBadCreds
		},
		OnError: func(c *connector.Connector, err error) {
			nlog.Errorf("stompcli: %v", err)
		},
		OnDisconnect: func(c *connector.Connector, graceful bool) {
			if graceful {
				done <- exitOK
				return
			}
			done <- exitConnFailed
		},
	}, nil)

	c.Hostname = cfg.Hostname
	c.Port = cfg.Port
	c.Broker = cfg.BrokerName
	c.Username = cfg.User
	c.Password = cfg.Password

	if err := c.Connect(); err != nil {
		nlog.Errorf("stompcli: connect: %v", err)
		return exitConnFailed
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT)
	go func() {
		<-sigCh
		c.Disconnect(true)
	}()

	return <-done
}

// printMessage prints the frame's headers followed by its body, indenting
// the body as JSON when content-type says so, else printing it raw.
func printMessage(f *frame.Frame) {
	fmt.Printf("--- %s ---\n", f.Command)
	for _, h := range f.Headers {
		fmt.Printf("%s: %s\n", h.Name, h.Value)
	}
	body := f.Body
	if ct := f.GetHeaderValue("content-type"); strings.Contains(ct, "json") {
		var buf bytes.Buffer
		if err := json.Indent(&buf, body, "", "  "); err == nil {
			fmt.Println(buf.String())
			return
		}
	}
	fmt.Println(string(body))
}
