package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/Chrezm/TsuserverDR/internal/proto"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:27017/ws", "WebSocket address")
	name := flag.String("name", "tester", "OOC name to chat with")
	char := flag.Int("char", -1, "character id to pick (-1 spectates)")
	text := flag.String("text", "hello from smoke test", "OOC text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(rec proto.Record) error {
		if err := conn.Write(ctx, websocket.MessageText, proto.Encode(rec)); err != nil {
			return fmt.Errorf("send %s: %w", rec.Type, err)
		}
		return nil
	}

	// await prints every record until one of type typ arrives.
	await := func(typ string) (proto.Record, error) {
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return proto.Record{}, fmt.Errorf("waiting for %s: %w", typ, err)
			}
			for _, rec := range parseServer(data) {
				fmt.Printf("<- %s\n", rec)
				if rec.Type == typ {
					return rec, nil
				}
			}
		}
	}

	if _, err := await(proto.TypeDecryptor); err != nil {
		return err
	}
	if err := send(proto.New(proto.TypeHello, "smoke-hdid")); err != nil {
		return err
	}
	id, err := await(proto.TypeIdentify)
	if err != nil {
		return err
	}
	slot := id.Field(0)

	if err := send(proto.New(proto.TypeRequestDone)); err != nil {
		return err
	}
	if _, err := await(proto.TypeDone); err != nil {
		return err
	}

	if err := send(proto.New(proto.TypeChooseChar, slot, strconv.Itoa(*char), "smoke-hdid")); err != nil {
		return err
	}
	if _, err := await(proto.TypeCharPicked); err != nil {
		return err
	}

	if err := send(proto.New(proto.TypeOOCMessage, *name, *text)); err != nil {
		return err
	}
	got, err := await(proto.TypeOOCMessage)
	if err != nil {
		return err
	}
	fmt.Printf("OOC echo: name=%s text=%q\n", got.Field(0), got.Field(1))
	return nil
}

// parseServer splits a frame into records. proto.Decoder only accepts
// client commands, so server records are cut here.
func parseServer(data []byte) []proto.Record {
	var out []proto.Record
	for _, chunk := range strings.Split(string(data), string(proto.Terminator)) {
		chunk = strings.TrimSuffix(chunk, string(proto.Separator))
		if chunk == "" {
			continue
		}
		parts := strings.Split(chunk, string(proto.Separator))
		fields := make([]string, 0, len(parts)-1)
		for _, p := range parts[1:] {
			fields = append(fields, proto.Unescape(p))
		}
		out = append(out, proto.Record{Type: parts[0], Fields: fields})
	}
	return out
}
