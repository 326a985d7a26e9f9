// Command klikschaak is a line-oriented REPL for exercising a single
// Klikschaak session from a terminal, grounded on
// chessvariantengine-lib's Run/ExecuteLine command loop and
// original_source/engine/main.py's demo driver.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/TJOffringa/Klikschaak/internal/model"
	"github.com/TJOffringa/Klikschaak/internal/session"
)

func main() {
	mgr := session.NewManager()
	s := mgr.Create("white", "black")

	fmt.Println("klikschaak — type 'help' for commands")
	printBoard(s)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !executeLine(s, line) {
			return
		}
	}
}

func executeLine(s *session.Session, line string) bool {
	fields := strings.Fields(line)
	cmd := fields[0]

	switch cmd {
	case "quit", "exit":
		return false
	case "help":
		printHelp()
	case "board":
		printBoard(s)
	case "fen":
		fmt.Println(s.Snapshot().FEN)
	case "resign":
		playerID := currentPlayer(s)
		if err := s.Resign(playerID); err != nil {
			fmt.Println("error:", err)
			return true
		}
		printBoard(s)
	case "draw":
		playerID := currentPlayer(s)
		if err := s.OfferDraw(playerID); err != nil {
			fmt.Println("error:", err)
			return true
		}
		fmt.Println("draw offered")
	case "moves":
		if len(fields) != 2 {
			fmt.Println("usage: moves <square>")
			return true
		}
		sq, ok := model.ParseSq(fields[1])
		if !ok {
			fmt.Println("bad square")
			return true
		}
		for _, c := range s.LegalMoves(sq) {
			fmt.Println(" ", c.Token(), c.Type)
		}
	default:
		playerID := currentPlayer(s)
		needsPromotion, err := s.Submit(playerID, cmd)
		if err != nil {
			fmt.Println("error:", err)
			return true
		}
		if needsPromotion {
			fmt.Println("promotion required: resubmit as <move>q, <move>r, <move>b or <move>n")
			return true
		}
		printBoard(s)
	}
	return true
}

func currentPlayer(s *session.Session) string {
	snap := s.Snapshot()
	if snap.SideToMove == model.White {
		return "white"
	}
	return "black"
}

func printBoard(s *session.Session) {
	snap := s.Snapshot()
	fmt.Print(snap.Board)
	fmt.Println("to move:", snap.SideToMove, "| state:", snap.State)
	if snap.HasWinner {
		fmt.Println("winner:", snap.WinnerColor)
	}
}

func printHelp() {
	fmt.Println(`commands:
  <move token>    e.g. e2e4, e1g1 (castle), a7b8q (promote), e4d5u0 (unklik piece 0)
  moves <square>  list legal candidates from a square
  board           print the board
  fen             print the current FEN
  resign          resign as the side to move
  draw            offer a draw
  quit            exit`)
}
