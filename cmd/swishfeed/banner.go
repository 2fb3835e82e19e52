package main

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// ANSI escape codes
const (
	clearLine = "\033[2K"
	moveUp    = "\033[%dA"
	reset     = "\033[0m"
	yellow    = "\033[33m"
	red       = "\033[31m"
	green     = "\033[32m"
	cyan      = "\033[36m"
	bold      = "\033[1m"
)

const bannerWidth = 62

var logo = []string{
	"    ____          _       __    ______              __      ",
	"   / ___|_      _(_)___  / /_  / ____/__  ___  ____/ /      ",
	"   \\___ \\ \\ /\\ / / / __|/ __ \\/ /_  / _ \\/ _ \\/ __  /       ",
	"    ___) \\ V  V / /\\__ \\ / / / __/ /  __/  __/ /_/ /        ",
	"   |____/ \\_/\\_/_/ |___/_/ /_/_/    \\___/\\___/\\__,_/        ",
}

// showBanner prints the logo and, unless skipAnimation, a ball arcing into
// the hoop on the right of the box.
func showBanner(w io.Writer, skipAnimation bool, frameDelay time.Duration) {
	border := strings.Repeat("═", bannerWidth)

	fmt.Fprintf(w, "\n  %s╔%s╗%s\n", cyan, border, reset)
	for _, line := range logo {
		fmt.Fprintf(w, "  %s║%s%s%s║%s\n", cyan, yellow, padRight(line, bannerWidth), cyan, reset)
	}

	if skipAnimation {
		fmt.Fprintf(w, "  %s╚%s╝%s\n\n", cyan, border, reset)
		return
	}

	fmt.Fprintf(w, "  %s╠%s╣%s\n", cyan, border, reset)

	const (
		courtRows = 4
		hoopCol   = bannerWidth - 6
		frames    = 14
	)

	drawCourt := func(ballRow, ballCol int, swish bool) {
		for row := 0; row < courtRows; row++ {
			line := []rune(strings.Repeat(" ", bannerWidth))
			if row == 1 {
				copy(line[hoopCol:], []rune("\\__/"))
			}
			if swish && row == courtRows-1 {
				copy(line[hoopCol-1:], []rune("SWISH!"))
			}
			if row == ballRow && ballCol >= 0 && ballCol < bannerWidth {
				line[ballCol] = 'o'
			}
			color := red
			if swish {
				color = green
			}
			fmt.Fprintf(w, "%s  %s║%s%s%s║%s\n", clearLine, cyan, color, string(line), cyan, reset)
		}
		fmt.Fprintf(w, "%s  %s╚%s╝%s\n", clearLine, cyan, border, reset)
	}

	for frame := 0; frame <= frames; frame++ {
		col, row := ballPosition(frame, frames, hoopCol+1, courtRows)
		drawCourt(row, col, frame == frames)
		if frame < frames {
			fmt.Fprintf(w, moveUp, courtRows+1)
			time.Sleep(frameDelay)
		}
	}
	fmt.Fprintln(w)
}

// ballPosition places the ball on an arc from the bottom left that peaks on
// the top row and drops into the rim at column target.
func ballPosition(frame, frames, target, rows int) (col, row int) {
	if frame >= frames {
		return target, 1
	}
	t := float64(frame) / float64(frames)
	height := 4 * t * (1 - t)
	return int(t * float64(target)), rows - 1 - int(height*float64(rows-1)+0.5)
}

func padRight(s string, width int) string {
	if n := len([]rune(s)); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
