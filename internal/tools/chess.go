package tools

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/ChamsBouzaiene/solvr/internal/agent"
	"github.com/ChamsBouzaiene/solvr/internal/oracle"
)

const (
	defaultEngineDepth   = 16
	engineStartupTimeout = 10 * time.Second
)

const fenSystem = "You are a chessboard OCR expert. You will be shown an image of a chess position.\n" +
	"Output the exact FEN **with all 6 fields** in a single line:\n" +
	"  <pieces> <side> <castling> <en-passant> <halfmove> <fullmove>\n" +
	"Rules:\n" +
	"- Use 'w' or 'b' for side to move. If the user specifies the side in the question, obey it.\n" +
	"- If castling rights are unclear, output '-'. If no en passant target, output '-'.\n" +
	"- If halfmove/fullmove are unknown, use '0' and '1' respectively.\n" +
	"- Return ONLY the FEN string, no extra text.\n"

// NewChessFromImageTool reads a chessboard position from an attached image
// via the vision oracle and returns a full 6-field FEN.
func NewChessFromImageTool(client oracle.Client) agent.Tool {
	return agent.Tool{
		Name:        "chess_from_image",
		Description: "Read a chessboard position from an image and return its FEN.",
		SchemaJSON:  `{"type":"object","properties":{"file_path":{"type":"string","description":"Path to the board image"}}}`,
		Aliases: map[string][]string{
			"file_path": {"path", "filename", "file", "image", "img"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			vision, ok := client.(oracle.VisionClient)
			if !ok {
				return "ERROR: chess_from_image: vision service not configured.", nil
			}

			path, _ := params["file_path"].(string)
			if path == "" {
				path = st.FileName
			}
			if path == "" {
				return "ERROR: image file not found.", nil
			}
			if _, err := os.Stat(path); err != nil {
				return "ERROR: image file not found.", nil
			}

			user := "Extract the FEN from this image. If the prompt mentions whose move, use that for the side."
			if hint := sideToMoveHint(st.Question); hint != "" {
				user = fmt.Sprintf("Side to move (from prompt): %s. %s", hint, user)
			}

			raw, err := vision.CompleteWithImage(ctx, fenSystem, user, path)
			if err != nil {
				return fmt.Sprintf("ERROR: vision request failed: %v", err), nil
			}

			line := strings.TrimSpace(raw)
			if idx := strings.IndexByte(line, '\n'); idx >= 0 {
				line = line[:idx]
			}
			fen := normalizeFEN(strings.Trim(strings.TrimSpace(line), "`"))
			if err := validateFEN(fen); err != nil {
				return fmt.Sprintf("ERROR: invalid FEN: %s (%v)", fen, err), nil
			}
			return fen, nil
		},
	}
}

// NewChessEngineTool computes the best move for a FEN with a local Stockfish
// binary (STOCKFISH_PATH or PATH lookup) and returns it in SAN.
func NewChessEngineTool() agent.Tool {
	return agent.Tool{
		Name:        "chess_engine",
		Description: "Given a FEN, compute the best move with Stockfish and return it in algebraic notation.",
		SchemaJSON:  `{"type":"object","properties":{"fen":{"type":"string","description":"Position in FEN"},"depth":{"type":"integer","description":"Search depth"}},"required":["fen"]}`,
		Aliases: map[string][]string{
			"fen": {"position", "FEN", "board"},
		},
		Fn: func(ctx context.Context, st *agent.State, params map[string]any) (string, error) {
			fen, _ := params["fen"].(string)
			fen = strings.TrimSpace(fen)
			if fen == "" {
				fen = strings.TrimSpace(st.Question)
			}
			if fen == "" {
				return "ERROR: no FEN provided.", nil
			}
			fen = normalizeFEN(fen)
			if err := validateFEN(fen); err != nil {
				return fmt.Sprintf("ERROR: invalid FEN: %v", err), nil
			}

			depth := defaultEngineDepth
			if d, ok := params["depth"].(float64); ok && d > 0 {
				depth = int(d)
			}

			enginePath := resolveStockfishPath()
			if enginePath == "" {
				return "ERROR: Stockfish engine not available. Set STOCKFISH_PATH or install stockfish.", nil
			}

			uci, err := bestMoveUCI(ctx, enginePath, fen, depth)
			if err != nil {
				return fmt.Sprintf("ERROR: engine failed: %v", err), nil
			}

			san, err := uciToSAN(fen, uci)
			if err != nil {
				return fmt.Sprintf("ERROR: could not render move %s: %v", uci, err), nil
			}
			return san, nil
		},
	}
}

func sideToMoveHint(question string) string {
	q := strings.ToLower(question)
	switch {
	case strings.Contains(q, "black") && strings.Contains(q, "turn"):
		return "b"
	case strings.Contains(q, "white") && strings.Contains(q, "turn"):
		return "w"
	}
	return ""
}

func resolveStockfishPath() string {
	if p := os.Getenv("STOCKFISH_PATH"); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	if found, err := exec.LookPath("stockfish"); err == nil {
		return found
	}
	return ""
}

// bestMoveUCI drives one search over the UCI protocol: handshake, position,
// fixed-depth go, then read the bestmove line.
func bestMoveUCI(ctx context.Context, enginePath, fen string, depth int) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, engineStartupTimeout+time.Duration(depth)*2*time.Second)
	defer cancel()

	cmd := exec.CommandContext(runCtx, enginePath)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return "", err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", err
	}
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("failed to start engine: %w", err)
	}
	defer func() {
		_, _ = fmt.Fprintln(stdin, "quit")
		_ = stdin.Close()
		_ = cmd.Wait()
	}()

	scanner := bufio.NewScanner(stdout)
	waitFor := func(prefix string) (string, error) {
		for scanner.Scan() {
			line := scanner.Text()
			if strings.HasPrefix(line, prefix) {
				return line, nil
			}
		}
		if err := runCtx.Err(); err != nil {
			return "", err
		}
		return "", fmt.Errorf("engine closed before %q", prefix)
	}

	if _, err := fmt.Fprintln(stdin, "uci"); err != nil {
		return "", err
	}
	if _, err := waitFor("uciok"); err != nil {
		return "", err
	}
	fmt.Fprintln(stdin, "isready")
	if _, err := waitFor("readyok"); err != nil {
		return "", err
	}
	fmt.Fprintf(stdin, "position fen %s\n", fen)
	fmt.Fprintf(stdin, "go depth %d\n", depth)

	line, err := waitFor("bestmove")
	if err != nil {
		return "", err
	}
	fields := strings.Fields(line)
	if len(fields) < 2 || fields[1] == "(none)" {
		return "", fmt.Errorf("no best move in %q", line)
	}
	return fields[1], nil
}

// ---- minimal board model for FEN handling and SAN rendering ----

// board holds piece placement as rank 8 down to rank 1; bytes are FEN piece
// letters, 0 for empty.
type board struct {
	squares   [8][8]byte
	whiteMove bool
	epSquare  string
}

var fenFieldRe = regexp.MustCompile(`\s+`)

// normalizeFEN pads a FEN to all 6 fields, assuming white to move and
// unknown castling/en-passant/clocks when absent.
func normalizeFEN(fen string) string {
	fen = strings.TrimSpace(strings.NewReplacer("\n", " ", "\t", " ").Replace(fen))
	parts := fenFieldRe.Split(fen, -1)
	defaults := []string{"", "w", "-", "-", "0", "1"}
	for len(parts) < 6 {
		parts = append(parts, defaults[len(parts)])
	}
	return strings.Join(parts[:6], " ")
}

func validateFEN(fen string) error {
	b, err := parseFEN(fen)
	if err != nil {
		return err
	}
	var whiteKings, blackKings int
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			switch b.squares[r][f] {
			case 'K':
				whiteKings++
			case 'k':
				blackKings++
			}
		}
	}
	if whiteKings != 1 || blackKings != 1 {
		return fmt.Errorf("expected exactly one king per side")
	}
	return nil
}

func parseFEN(fen string) (*board, error) {
	parts := strings.Fields(fen)
	if len(parts) < 2 {
		return nil, fmt.Errorf("FEN needs placement and side fields")
	}

	ranks := strings.Split(parts[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("placement must have 8 ranks, got %d", len(ranks))
	}

	b := &board{}
	for r, rank := range ranks {
		file := 0
		for _, c := range rank {
			switch {
			case c >= '1' && c <= '8':
				file += int(c - '0')
			case strings.ContainsRune("KQRBNPkqrbnp", c):
				if file > 7 {
					return nil, fmt.Errorf("rank %d overflows", 8-r)
				}
				b.squares[r][file] = byte(c)
				file++
			default:
				return nil, fmt.Errorf("invalid piece character %q", c)
			}
		}
		if file != 8 {
			return nil, fmt.Errorf("rank %d has %d squares", 8-r, file)
		}
	}

	switch parts[1] {
	case "w":
		b.whiteMove = true
	case "b":
		b.whiteMove = false
	default:
		return nil, fmt.Errorf("side to move must be w or b, got %q", parts[1])
	}
	if len(parts) > 3 && parts[3] != "-" {
		b.epSquare = parts[3]
	}
	return b, nil
}

// square index helpers: rank index 0 is rank 8 (FEN order), file 0 is 'a'.
func squareOf(alg string) (rank, file int, ok bool) {
	if len(alg) != 2 || alg[0] < 'a' || alg[0] > 'h' || alg[1] < '1' || alg[1] > '8' {
		return 0, 0, false
	}
	return 7 - int(alg[1]-'1'), int(alg[0] - 'a'), true
}

func algOf(rank, file int) string {
	return string([]byte{byte('a' + file), byte('8' - rank)})
}

func isWhitePiece(p byte) bool { return p >= 'A' && p <= 'Z' }

// uciToSAN renders a UCI move like e2e4, g1f3 or e7e8q as standard
// algebraic notation for the given position, including capture, castling,
// promotion, disambiguation, and a "+" or "#" suffix when the move leaves
// the enemy king in check or checkmated.
func uciToSAN(fen, uci string) (string, error) {
	b, err := parseFEN(fen)
	if err != nil {
		return "", err
	}
	if len(uci) < 4 {
		return "", fmt.Errorf("malformed UCI move %q", uci)
	}
	fromR, fromF, ok := squareOf(uci[0:2])
	if !ok {
		return "", fmt.Errorf("bad origin square in %q", uci)
	}
	toR, toF, ok := squareOf(uci[2:4])
	if !ok {
		return "", fmt.Errorf("bad target square in %q", uci)
	}

	piece := b.squares[fromR][fromF]
	if piece == 0 {
		return "", fmt.Errorf("no piece on %s", uci[0:2])
	}
	if isWhitePiece(piece) != b.whiteMove {
		return "", fmt.Errorf("piece on %s belongs to the side not to move", uci[0:2])
	}

	upper := piece
	if !isWhitePiece(piece) {
		upper = piece - 'a' + 'A'
	}

	var san string
	switch {
	case upper == 'K' && fromF == 4 && toF == 6:
		san = "O-O"
	case upper == 'K' && fromF == 4 && toF == 2:
		san = "O-O-O"
	default:
		target := b.squares[toR][toF]
		capture := target != 0
		if upper == 'P' && fromF != toF && target == 0 && b.epSquare == uci[2:4] {
			capture = true // en passant
		}

		switch upper {
		case 'P':
			if capture {
				san = string([]byte{byte('a' + fromF), 'x'}) + uci[2:4]
			} else {
				san = uci[2:4]
			}
			if len(uci) >= 5 {
				san += "=" + strings.ToUpper(uci[4:5])
			}
		default:
			san = string(upper)
			san += disambiguate(b, upper, fromR, fromF, toR, toF)
			if capture {
				san += "x"
			}
			san += uci[2:4]
		}
	}

	applyMove(b, piece, upper, fromR, fromF, toR, toF, uci)
	b.epSquare = ""
	if upper == 'P' && (fromR-toR == 2 || toR-fromR == 2) {
		b.epSquare = algOf((fromR+toR)/2, fromF)
	}
	if inCheck(b, !b.whiteMove) {
		if hasLegalReply(b, !b.whiteMove) {
			san += "+"
		} else {
			san += "#"
		}
	}
	return san, nil
}

// disambiguate returns the origin file, rank, or both when another piece of
// the same type could also reach the target square.
func disambiguate(b *board, upper byte, fromR, fromF, toR, toF int) string {
	if upper == 'K' {
		return ""
	}
	var sameFile, sameRank, other bool
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if r == fromR && f == fromF {
				continue
			}
			p := b.squares[r][f]
			if p == 0 || isWhitePiece(p) != b.whiteMove {
				continue
			}
			u := p
			if !isWhitePiece(p) {
				u = p - 'a' + 'A'
			}
			if u != upper || !attacks(b, r, f, toR, toF) {
				continue
			}
			other = true
			if f == fromF {
				sameFile = true
			}
			if r == fromR {
				sameRank = true
			}
		}
	}
	switch {
	case !other:
		return ""
	case !sameFile:
		return string([]byte{byte('a' + fromF)})
	case !sameRank:
		return string([]byte{byte('8' - fromR)})
	default:
		return algOf(fromR, fromF)
	}
}

func applyMove(b *board, piece, upper byte, fromR, fromF, toR, toF int, uci string) {
	b.squares[fromR][fromF] = 0
	moved := piece
	if upper == 'P' && len(uci) >= 5 {
		promo := strings.ToUpper(uci[4:5])[0]
		if !isWhitePiece(piece) {
			promo = promo - 'A' + 'a'
		}
		moved = promo
	}
	if upper == 'P' && fromF != toF && b.squares[toR][toF] == 0 {
		b.squares[fromR][toF] = 0 // en passant victim sits beside the origin rank
	}
	b.squares[toR][toF] = moved
	if upper == 'K' && fromF == 4 && (toF == 6 || toF == 2) {
		rookFrom, rookTo := 7, 5
		if toF == 2 {
			rookFrom, rookTo = 0, 3
		}
		b.squares[toR][rookTo] = b.squares[toR][rookFrom]
		b.squares[toR][rookFrom] = 0
	}
}

// hasLegalReply reports whether the given side has any move that leaves its
// own king out of check. When the side is in check and this returns false,
// the position is checkmate.
func hasLegalReply(b *board, white bool) bool {
	for fromR := 0; fromR < 8; fromR++ {
		for fromF := 0; fromF < 8; fromF++ {
			p := b.squares[fromR][fromF]
			if p == 0 || isWhitePiece(p) != white {
				continue
			}
			for toR := 0; toR < 8; toR++ {
				for toF := 0; toF < 8; toF++ {
					if !canMove(b, fromR, fromF, toR, toF) {
						continue
					}
					trial := *b
					if (p == 'P' || p == 'p') && fromF != toF && trial.squares[toR][toF] == 0 {
						trial.squares[fromR][toF] = 0 // en passant victim
					}
					trial.squares[toR][toF] = p
					trial.squares[fromR][fromF] = 0
					if !inCheck(&trial, white) {
						return true
					}
				}
			}
		}
	}
	return false
}

// canMove reports whether the piece on (fromR, fromF) can play a plain move
// to the target square, ignoring pins: an attack-shaped move onto an empty
// or enemy-occupied square, plus the non-capturing pawn pushes. Castling is
// omitted, it can never answer a check.
func canMove(b *board, fromR, fromF, toR, toF int) bool {
	p := b.squares[fromR][fromF]
	if p == 0 || (fromR == toR && fromF == toF) {
		return false
	}
	target := b.squares[toR][toF]
	if target != 0 && isWhitePiece(target) == isWhitePiece(p) {
		return false
	}

	if p == 'P' || p == 'p' {
		dir, startRank := -1, 6
		if p == 'p' {
			dir, startRank = 1, 1
		}
		if toF == fromF && target == 0 {
			if toR == fromR+dir {
				return true
			}
			return fromR == startRank && toR == fromR+2*dir && b.squares[fromR+dir][fromF] == 0
		}
		if target == 0 && b.epSquare != algOf(toR, toF) {
			return false
		}
	}
	return attacks(b, fromR, fromF, toR, toF)
}

// inCheck reports whether the king of the given color is attacked.
func inCheck(b *board, whiteKing bool) bool {
	king := byte('K')
	if !whiteKing {
		king = 'k'
	}
	for r := 0; r < 8; r++ {
		for f := 0; f < 8; f++ {
			if b.squares[r][f] != king {
				continue
			}
			for ar := 0; ar < 8; ar++ {
				for af := 0; af < 8; af++ {
					p := b.squares[ar][af]
					if p == 0 || isWhitePiece(p) == whiteKing {
						continue
					}
					if attacks(b, ar, af, r, f) {
						return true
					}
				}
			}
			return false
		}
	}
	return false
}

// attacks reports whether the piece on (fromR, fromF) attacks the target
// square, ignoring pins. Pawn pushes are not attacks; captures are.
func attacks(b *board, fromR, fromF, toR, toF int) bool {
	p := b.squares[fromR][fromF]
	if p == 0 {
		return false
	}
	dr, df := toR-fromR, toF-fromF
	abs := func(n int) int {
		if n < 0 {
			return -n
		}
		return n
	}

	upper := p
	if !isWhitePiece(p) {
		upper = p - 'a' + 'A'
	}
	switch upper {
	case 'N':
		return abs(dr)*abs(df) == 2
	case 'K':
		return (dr != 0 || df != 0) && abs(dr) <= 1 && abs(df) <= 1
	case 'P':
		if abs(df) != 1 {
			return false
		}
		if isWhitePiece(p) {
			return dr == -1
		}
		return dr == 1
	case 'B':
		if abs(dr) != abs(df) || dr == 0 {
			return false
		}
	case 'R':
		if dr != 0 && df != 0 {
			return false
		}
		if dr == 0 && df == 0 {
			return false
		}
	case 'Q':
		if dr == 0 && df == 0 {
			return false
		}
		if dr != 0 && df != 0 && abs(dr) != abs(df) {
			return false
		}
	default:
		return false
	}

	// sliding pieces: path must be clear
	stepR, stepF := sign(dr), sign(df)
	r, f := fromR+stepR, fromF+stepF
	for r != toR || f != toF {
		if b.squares[r][f] != 0 {
			return false
		}
		r += stepR
		f += stepF
	}
	return true
}

func sign(n int) int {
	switch {
	case n > 0:
		return 1
	case n < 0:
		return -1
	default:
		return 0
	}
}
