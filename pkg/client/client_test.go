package client

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strconv"
	"testing"
	"time"

	"skyhook/pkg/protocol"
)

// newStubServer поднимает HTTP-заглушку, говорящую на протоколе сервера, и
// возвращает клиент, направленный на нее. Последняя принятая команда
// складывается в got.
func newStubServer(t *testing.T, got *protocol.Command) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var cmd protocol.Command
		if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
			t.Errorf("stub server: decode command: %v", err)
			return
		}
		*got = cmd

		var result protocol.Result
		switch cmd.FunctionName {
		case "is_online":
			result = protocol.NewResult(true, true, "is_online")
		case protocol.CommandListFunctions:
			result = protocol.NewResult(true, []string{"is_online", "echo_message"}, protocol.CommandListFunctions)
		case protocol.CommandShutdown:
			result = protocol.NewResult(true, "Server offline", protocol.CommandShutdown)
		default:
			result = protocol.NewResult(true, "ok", cmd.FunctionName)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(result)
	}))
	t.Cleanup(ts.Close)

	host, portText, err := net.SplitHostPort(ts.Listener.Addr().String())
	if err != nil {
		t.Fatalf("split stub address: %v", err)
	}
	port, _ := strconv.Atoi(portText)
	return New(host, port, time.Second)
}

func TestExecuteSendsCommand(t *testing.T) {
	var got protocol.Command
	c := newStubServer(t, &got)

	r, err := c.Execute("echo_message", map[string]interface{}{"message": "hi"})
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !r.Success || r.Command != "echo_message" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if got.FunctionName != "echo_message" {
		t.Fatalf("sent FunctionName = %q", got.FunctionName)
	}
	if got.Parameters["message"] != "hi" {
		t.Fatalf("sent Parameters = %v", got.Parameters)
	}
}

func TestExecuteModuleAddsModuleKey(t *testing.T) {
	var got protocol.Command
	c := newStubServer(t, &got)

	if _, err := c.ExecuteModule("anim", "bake_keys", nil); err != nil {
		t.Fatalf("ExecuteModule: %v", err)
	}
	if got.Parameters[protocol.KeyModule] != "anim" {
		t.Fatalf("module key not sent: %v", got.Parameters)
	}
}

func TestIsHostOnline(t *testing.T) {
	var got protocol.Command
	c := newStubServer(t, &got)
	if !c.IsHostOnline() {
		t.Fatalf("IsHostOnline() = false against live stub")
	}
}

func TestIsHostOnlineOfflineServer(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	_ = ln.Close()

	c := New("", port, 250*time.Millisecond)
	if c.IsHostOnline() {
		t.Fatalf("IsHostOnline() = true for closed port")
	}
}

func TestListFunctions(t *testing.T) {
	var got protocol.Command
	c := newStubServer(t, &got)

	names, err := c.ListFunctions()
	if err != nil {
		t.Fatalf("ListFunctions: %v", err)
	}
	if !reflect.DeepEqual(names, []string{"is_online", "echo_message"}) {
		t.Fatalf("names = %v", names)
	}
}

func TestShutdown(t *testing.T) {
	var got protocol.Command
	c := newStubServer(t, &got)

	r, err := c.Shutdown()
	if err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !r.Success || r.ReturnValue != "Server offline" {
		t.Fatalf("unexpected result: %+v", r)
	}
	if got.FunctionName != protocol.CommandShutdown {
		t.Fatalf("sent FunctionName = %q", got.FunctionName)
	}
}

func TestHostConstructors(t *testing.T) {
	for _, tc := range []struct {
		client *Client
		port   int
	}{
		{NewBlender(), protocol.PortBlender},
		{NewMaya(), protocol.PortMaya},
		{NewHoudini(), protocol.PortHoudini},
		{NewSubstancePainter(), protocol.PortSubstancePainter},
	} {
		if tc.client.Port != tc.port {
			t.Fatalf("port = %d, want %d", tc.client.Port, tc.port)
		}
		if tc.client.Addr != "127.0.0.1" {
			t.Fatalf("addr = %q", tc.client.Addr)
		}
		if tc.client.Timeout != defaultTimeout {
			t.Fatalf("timeout = %v", tc.client.Timeout)
		}
	}
}
