package env

import (
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

var variablePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// WarnFunc is called for placeholders that cannot be resolved
type WarnFunc func(format string, args ...any)

// Resolver substitutes {{...}} placeholders. Unresolved placeholders are left as written.
type Resolver struct {
	variables map[string]string
	now       func() time.Time
	warnFunc  WarnFunc
}

func NewResolver() *Resolver {
	return &Resolver{
		variables: make(map[string]string),
		now:       time.Now,
	}
}

func (r *Resolver) SetWarnFunc(fn WarnFunc) {
	r.warnFunc = fn
}

func (r *Resolver) warn(format string, args ...any) {
	if r.warnFunc != nil {
		r.warnFunc(format, args...)
	}
}

func (r *Resolver) SetVariables(vars map[string]string) {
	for k, v := range vars {
		r.variables[k] = v
	}
}

func (r *Resolver) SetVariable(name, value string) {
	r.variables[name] = value
}

// ParseAssignment splits a NAME=value command-line assignment.
func ParseAssignment(s string) (string, string, bool) {
	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return "", "", false
	}
	return name, value, true
}

func (r *Resolver) Resolve(input string) string {
	return variablePattern.ReplaceAllStringFunc(input, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])

		if strings.HasPrefix(expr, "$") {
			if val, ok := os.LookupEnv(expr[1:]); ok {
				return val
			}
			r.warn("unresolved environment variable: %s", expr)
			return match
		}

		switch expr {
		case "uuid", "uuid()":
			return uuid.NewString()
		case "timestamp", "timestamp()":
			return strconv.FormatInt(r.now().Unix(), 10)
		}

		if val, ok := r.variables[expr]; ok {
			return val
		}

		r.warn("unresolved variable: %s", expr)
		return match
	})
}
