// Package dice abstracts the source of dice rolls so games can run on real
// randomness or on a scripted, reproducible sequence.
package dice

import (
	"bufio"
	"fmt"
	"math/rand"
	"os"
	"regexp"
	"strconv"
	"strings"
	"sync"
)

// Roller produces one pair of roll values, each in [1,6].
type Roller interface {
	Roll() (int, int)
}

// One roller serves every game; *rand.Rand is not goroutine-safe, so rolls
// are serialized.
type randomRoller struct {
	mu   sync.Mutex
	rand *rand.Rand
}

func NewRandomRoller(rand *rand.Rand) Roller {
	return &randomRoller{rand: rand}
}

func (that *randomRoller) Roll() (int, int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	return that.rand.Intn(6) + 1, that.rand.Intn(6) + 1
}

// ScriptRoller replays a finite cyclic sequence of pre-defined pairs,
// wrapping to the first entry after the last one.
type ScriptRoller struct {
	mu    sync.Mutex
	pairs [][2]int
	index int
}

// NewScriptRoller builds a roller over the given pairs. An empty script
// defaults to a single (1, 1) pair.
func NewScriptRoller(pairs [][2]int) *ScriptRoller {
	if len(pairs) == 0 {
		pairs = [][2]int{{1, 1}}
	}

	return &ScriptRoller{pairs: pairs}
}

var scriptLine = regexp.MustCompile(`^[1-6] [1-6]$`)

// NewScriptRollerFromFile reads a roll script with one "d1 d2" line per
// pair. Lines that are not two values in [1,6] are skipped.
func NewScriptRollerFromFile(path string) (*ScriptRoller, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("can't open dice script: %w", err)
	}
	defer file.Close()

	var pairs [][2]int

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !scriptLine.MatchString(line) {
			continue
		}

		words := strings.SplitN(line, " ", 2)
		first, _ := strconv.Atoi(words[0])
		second, _ := strconv.Atoi(words[1])
		pairs = append(pairs, [2]int{first, second})
	}

	if err = scanner.Err(); err != nil {
		return nil, fmt.Errorf("can't read dice script: %w", err)
	}

	return NewScriptRoller(pairs), nil
}

func (that *ScriptRoller) Roll() (int, int) {
	that.mu.Lock()
	defer that.mu.Unlock()

	pair := that.pairs[that.index]
	that.index = (that.index + 1) % len(that.pairs)

	return pair[0], pair[1]
}
