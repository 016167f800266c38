package roles

import (
	"fmt"
	"strings"
)

// Platform is one of the product surfaces a role can be scoped to.
type Platform string

const (
	Legend  Platform = "legend" // privileged, cross-platform staff
	ATLVS   Platform = "atlvs"
	COMPVSS Platform = "compvss"
	GVTEWAY Platform = "gvteway"
)

// PrivilegedPlatform is the root role family. Any role on it is granted every permission.
const PrivilegedPlatform = Legend

// AllPlatforms returns every platform in display order.
func AllPlatforms() []Platform {
	return []Platform{Legend, ATLVS, COMPVSS, GVTEWAY}
}

// ParsePlatform accepts the lowercase platform name (case-insensitive).
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	switch p {
	case Legend, ATLVS, COMPVSS, GVTEWAY:
		return p, nil
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// prefix is the upper-case namespace used in stored role codes (e.g. "ATLVS_").
func (p Platform) prefix() string {
	return strings.ToUpper(string(p)) + "_"
}

// Level is the coarse seniority of a platform role. Higher is more senior.
type Level int

const (
	LevelViewer Level = iota + 1
	LevelMember
	LevelManager
	LevelAdmin
	LevelGod
)

var levelNames = map[Level]string{
	LevelViewer:  "viewer",
	LevelMember:  "member",
	LevelManager: "manager",
	LevelAdmin:   "admin",
	LevelGod:     "god",
}

func (l Level) String() string {
	if s, ok := levelNames[l]; ok {
		return s
	}
	return fmt.Sprintf("Level(%d)", int(l))
}

// ParseLevel accepts god, admin, manager, member or viewer.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for l, name := range levelNames {
		if name == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown role level %q", s)
}

func (l Level) MarshalText() ([]byte, error) {
	if _, ok := levelNames[l]; !ok {
		return nil, fmt.Errorf("unknown role level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
