package common

import (
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
)

const (
	ENABLED  = "enabled"
	DISABLED = "disabled"
)

var snowflakeNode *snowflake.Node

func init() {
	node, err := snowflake.NewNode(int64(rand.Intn(1023) + 1))
	if err != nil {
		panic(fmt.Sprintf("snowflake node init: %v", err))
	}
	snowflakeNode = node
}

// UUIDint64 returns a snowflake int64 id. Ids are encoded as strings in
// JSON payloads, see the `json:"id,string"` tags on domain models.
func UUIDint64() int64 {
	return snowflakeNode.Generate().Int64()
}

// UUID returns the base36 string form of a snowflake id.
func UUID() string {
	return snowflakeNode.Generate().Base36()
}

// ParseInt64 parses s as a base 10 int64, returning defval when s is
// empty or malformed.
func ParseInt64(s string, defval int64) int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return defval
	}
	return v
}

// FileExists reports whether path exists.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// MakeDir creates dir with parents if missing and returns it.
func MakeDir(path string) string {
	if !FileExists(path) {
		_ = os.MkdirAll(path, 0o755)
	}
	return path
}

// TruncateString trims s to at most max runes.
func TruncateString(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
