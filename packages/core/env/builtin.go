package env

import (
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// callBuiltin evaluates a builtin function expression like "uuid()" or
// "randomInt(1, 10)".
func callBuiltin(expr string) (any, bool) {
	open := strings.Index(expr, "(")
	if open == -1 || !strings.HasSuffix(expr, ")") {
		return nil, false
	}

	name := strings.TrimSpace(expr[:open])
	rawArgs := expr[open+1 : len(expr)-1]

	var args []string
	if strings.TrimSpace(rawArgs) != "" {
		for _, a := range strings.Split(rawArgs, ",") {
			args = append(args, strings.TrimSpace(a))
		}
	}

	switch name {
	case "uuid":
		return uuid.New().String(), true
	case "timestamp":
		return time.Now().Unix(), true
	case "isoTimestamp":
		return time.Now().UTC().Format(time.RFC3339), true
	case "randomInt":
		if len(args) != 2 {
			return nil, false
		}
		min, err1 := strconv.Atoi(args[0])
		max, err2 := strconv.Atoi(args[1])
		if err1 != nil || err2 != nil || max < min {
			return nil, false
		}
		return min + rand.Intn(max-min+1), true
	default:
		return nil, false
	}
}
