// cmd/preflight/main.go
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"

	"github.com/hamed0406/statuspulse/internal/config"
)

func main() {
	fail := func(msg string) {
		fmt.Fprintln(os.Stderr, "✖", msg)
		os.Exit(1)
	}
	warn := func(msg string) { fmt.Fprintln(os.Stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Println("✔", msg) }

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		for _, e := range multierr.Errors(err) {
			fmt.Fprintln(os.Stderr, "✖", e)
		}
		os.Exit(1)
	}

	switch hashKind(cfg.AdminPasswordHash) {
	case hashEmpty:
		warn("ADMIN_PASSWORD_HASH is empty; run-check and update-sites will answer 401.")
	case hashBcrypt:
		ok("ADMIN_PASSWORD_HASH is a bcrypt hash")
	case hashSHA256:
		ok("ADMIN_PASSWORD_HASH is a SHA-256 digest")
	default:
		fail("ADMIN_PASSWORD_HASH is neither bcrypt nor a 64-char hex SHA-256 digest.")
	}

	ok("API_ADDR=" + cfg.Addr)

	switch cfg.StoreDriver {
	case "memory":
		warn("STORE_DRIVER=memory; snapshots are lost on restart.")
	default:
		ok("STORE_DRIVER=" + cfg.StoreDriver + " with DATABASE_URL present")
	}

	spec := strings.TrimSpace(cfg.CheckSchedule)
	if spec == "" || strings.EqualFold(spec, "off") {
		warn("CHECK_SCHEDULE is off; checks only run via POST /run-check.")
	} else if _, err := cron.ParseStandard(spec); err != nil {
		fail("CHECK_SCHEDULE " + err.Error())
	} else {
		ok("CHECK_SCHEDULE=" + spec)
	}

	ok(fmt.Sprintf("%d sites configured", len(cfg.Sites)))
	ok("preflight passed")
}

const (
	hashEmpty = iota
	hashBcrypt
	hashSHA256
	hashInvalid
)

// hashKind reports which form of admin password hash h is.
func hashKind(h string) int {
	h = strings.TrimSpace(h)
	switch {
	case h == "":
		return hashEmpty
	case strings.HasPrefix(h, "$2a$"), strings.HasPrefix(h, "$2b$"), strings.HasPrefix(h, "$2y$"):
		if _, err := bcrypt.Cost([]byte(h)); err != nil {
			return hashInvalid
		}
		return hashBcrypt
	case len(h) == 64:
		if _, err := hex.DecodeString(h); err != nil {
			return hashInvalid
		}
		return hashSHA256
	default:
		return hashInvalid
	}
}
