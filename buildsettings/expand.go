package buildsettings

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/vporton/dub"
)

// Env looks up a variable binding for $NAME expansion, mirroring
// os.LookupEnv's (value, ok) shape so tests can substitute a fixed map
// instead of the real process environment.
type Env func(name string) (string, bool)

// OSEnv is the default Env, backed by the real process environment.
func OSEnv(name string) (string, bool) {
	return os.LookupEnv(name)
}

// Expand implements dub's build-setting substitution grammar: "$$" is a
// literal "$", "$PACKAGE_DIR" is packageDir, and "$NAME" (NAME matching
// [A-Za-z0-9_]+) is looked up via env. An unbound $NAME fails with
// *dub.UnknownVariableError.
//
// When asPath is true, a non-absolute result is resolved against packageDir
// and returned as a native path; an absolute result is returned verbatim.
func Expand(s, packageDir string, env Env, asPath bool) (string, error) {
	var out strings.Builder
	i := 0
	for i < len(s) {
		if s[i] != '$' {
			out.WriteByte(s[i])
			i++
			continue
		}

		rest := s[i+1:]
		if strings.HasPrefix(rest, "$") {
			out.WriteByte('$')
			i += 2
			continue
		}

		// Match the full [A-Za-z0-9_]+ run before deciding what it names, so
		// "$PACKAGE_DIRS" resolves as the env var PACKAGE_DIRS rather than
		// being split into packageDir + "S" on a bare prefix match.
		name := takeVarName(rest)
		switch {
		case name == "":
			// A bare "$" with nothing recognizable following it is passed
			// through literally rather than treated as an error; every real
			// grammar case (escape, PACKAGE_DIR, NAME) is handled elsewhere
			// in this loop.
			out.WriteByte('$')
			i++
		case name == "PACKAGE_DIR":
			out.WriteString(packageDir)
			i += 1 + len(name)
		default:
			val, ok := env(name)
			if !ok {
				return "", &dub.UnknownVariableError{Name: name}
			}
			out.WriteString(val)
			i += 1 + len(name)
		}
	}

	result := out.String()
	if asPath && result != "" && !filepath.IsAbs(result) {
		result = filepath.Join(packageDir, result)
	}
	return result, nil
}

func takeVarName(s string) string {
	i := 0
	for i < len(s) {
		c := s[i]
		isWord := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '_'
		if !isWord {
			break
		}
		i++
	}
	return s[:i]
}

// sanitizeIdentifier replaces every character outside [A-Za-z0-9_] with '_',
// for the synthetic "Have_<name>" version identifier Aggregate emits per
// package.
func sanitizeIdentifier(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
