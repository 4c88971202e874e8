// Package profiles reads the browser's Local State registry and turns its
// profile cache into the records the extension renders: display name,
// account email, highlight color, and avatar.
package profiles

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/profswitch/host/internal/config"
	"github.com/profswitch/host/internal/logger"
	"github.com/profswitch/host/pkg/types"
)

// Store reads profile metadata from the browser's user data directory.
// The registry file is never written.
type Store struct {
	cfg config.BrowserConfig
	log *logger.Logger
}

// NewStore creates a profile store over the configured browser directory
func NewStore(cfg config.BrowserConfig, log *logger.Logger) *Store {
	if log == nil {
		log = logger.Global()
	}
	return &Store{
		cfg: cfg,
		log: log.With("component", "profiles"),
	}
}

// localState mirrors the slice of the registry file this host consumes
type localState struct {
	Profile struct {
		InfoCache map[string]profileInfo `json:"info_cache"`
	} `json:"profile"`
}

type profileInfo struct {
	UserName       string `json:"user_name"`
	Name           string `json:"name"`
	HighlightColor *int64 `json:"profile_highlight_color"`
}

// List enumerates profiles in presentation order. When currentEmail is
// non-empty and matches a profile's account email, CurrentIndex carries
// that profile's position; otherwise it stays null.
func (s *Store) List(currentEmail string) (*types.ProfileList, error) {
	path := filepath.Join(s.cfg.UserDataDir, s.cfg.LocalStateFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, types.WrapError(types.ErrCodeNotFound, "failed to read Local State", err)
	}

	var state localState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, types.WrapError(types.ErrCodeInvalid, "failed to parse Local State", err)
	}

	infoCache := state.Profile.InfoCache
	if len(infoCache) == 0 {
		return nil, types.NewError(types.ErrCodeNotFound, "no profiles found in Local State")
	}

	// Map unmarshalling loses document order, which the sort relies on for
	// directories outside the Default/"Profile N" naming scheme.
	dirs := orderedCacheKeys(data)
	if len(dirs) != len(infoCache) {
		dirs = make([]string, 0, len(infoCache))
		for dir := range infoCache {
			dirs = append(dirs, dir)
		}
	}
	SortDirectories(dirs)

	list := &types.ProfileList{Profiles: make([]types.Profile, 0, len(dirs))}
	for i, dir := range dirs {
		info := infoCache[dir]

		name := info.Name
		if name == "" {
			name = dir
		}

		list.Profiles = append(list.Profiles, types.Profile{
			Directory:      dir,
			Name:           name,
			Email:          info.UserName,
			HighlightColor: HighlightColorHex(info.HighlightColor),
			Avatar:         s.readAvatar(dir),
		})

		if currentEmail != "" && info.UserName == currentEmail {
			index := i
			list.CurrentIndex = &index
		}
	}

	return list, nil
}

// HighlightColorHex converts the registry's signed 32-bit color value to a
// lowercase #rrggbb string. The value is masked to unsigned; red is bits
// 16-23, green 8-15, blue 0-7. A nil input stays nil.
func HighlightColorHex(value *int64) *string {
	if value == nil {
		return nil
	}
	unsigned := uint32(uint64(*value) & 0xFFFFFFFF)
	r := (unsigned >> 16) & 0xFF
	g := (unsigned >> 8) & 0xFF
	b := unsigned & 0xFF
	hex := fmt.Sprintf("#%02x%02x%02x", r, g, b)
	return &hex
}

// readAvatar loads a profile's picture as a base64 PNG data URI. A missing
// or unreadable file is simply no avatar, never an error.
func (s *Store) readAvatar(profileDir string) *string {
	path := filepath.Join(s.cfg.UserDataDir, profileDir, s.cfg.AvatarFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	return &uri
}

// sortRank maps a directory name to its ordering group: "Default" first,
// then names whose last whitespace token is numeric in ascending order,
// then everything else in original relative order.
func sortRank(dir string) (group, num int) {
	if dir == "Default" {
		return 0, 0
	}
	fields := strings.Fields(dir)
	if len(fields) > 0 {
		if n, err := strconv.Atoi(fields[len(fields)-1]); err == nil {
			return 1, n
		}
	}
	return 2, 0
}

// SortDirectories orders profile directory names in place for presentation
func SortDirectories(dirs []string) {
	sort.SliceStable(dirs, func(i, j int) bool {
		gi, ni := sortRank(dirs[i])
		gj, nj := sortRank(dirs[j])
		if gi != gj {
			return gi < gj
		}
		return ni < nj
	})
}
