// Command ws_duel is an interactive terminal client for the duel
// server, useful for poking at a running instance without a browser.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/duelforge/duel-server/internal/client"
	"github.com/duelforge/duel-server/internal/core"
)

func main() {
	if err := run(); err != nil {
		log.Printf("ws_duel: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	joinURL := flag.String("join", "", "join link to auto-join (…?room=<id>)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	c, err := client.Dial(dialCtx, *addr, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	c.AddListener(&client.Listener{
		OnRoomCreated: func(roomID, joinURL string) {
			fmt.Printf("room created: %s\nshare this link: %s\n", roomID, joinURL)
		},
		OnPlayerJoined: func(playerID string, players []core.PlayerRecord) {
			fmt.Printf("player joined: %s (%d in room)\n", playerID, len(players))
		},
		OnGameStarted: func(start time.Time, players []core.PlayerRecord) {
			fmt.Printf("game started at %s with %d players\n", start.Format(time.RFC3339), len(players))
		},
		OnPlayerDamaged: func(playerID string, health int, attackerID string) {
			fmt.Printf("%s hit %s, health now %d\n", attackerID, playerID, health)
		},
		OnPlayerDefeated: func(playerID, winnerID string) {
			fmt.Printf("%s defeated, %s wins\n", playerID, winnerID)
		},
		OnPlayerLeft: func(playerID string) {
			fmt.Printf("player left: %s\n", playerID)
		},
		OnHostDisconnected: func() {
			fmt.Println("host disconnected, room closed")
		},
		OnError: func(code, message string) {
			fmt.Printf("error [%s]: %s\n", code, message)
		},
	})

	fmt.Printf("connected as %s\n", c.PlayerID())

	if *joinURL != "" {
		if ok, err := c.JoinFromURL(ctx, *joinURL); err != nil {
			return err
		} else if !ok {
			fmt.Println("join link carries no room parameter")
		}
	}

	fmt.Println("commands: create | join <room> | start | hit <player> <damage> | quit")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "create":
			err = c.CreateRoom(ctx)
		case "join":
			if len(fields) != 2 {
				fmt.Println("usage: join <room>")
				continue
			}
			err = c.JoinRoom(ctx, fields[1])
		case "start":
			err = c.StartGame(ctx)
		case "hit":
			if len(fields) != 3 {
				fmt.Println("usage: hit <player> <damage>")
				continue
			}
			damage, convErr := strconv.Atoi(fields[2])
			if convErr != nil {
				fmt.Println("damage must be a number")
				continue
			}
			err = c.SendPlayerHit(ctx, fields[1], damage)
		case "quit":
			return nil
		default:
			fmt.Println("unknown command")
			continue
		}
		if err != nil {
			return err
		}
	}
	return scanner.Err()
}
