package sqldb

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/jonbodner/multierr"
	log "github.com/sirupsen/logrus"
)

// StmtStore holds parsed statements loaded from `sql/` directories, keyed by "group.name".
//
// Each registered group contributes `<name>.sql` files written with `:name` or `?`
// parameters, and optionally `<name>.<dbtype>` files that replace the portable
// version for that database type.
type StmtStore struct {
	dbType string
	prefix byte
	stmts  map[string]*ParsedStmt
}

func NewStmtStore(dbType string, placeholderPrefix byte) *StmtStore {
	return &StmtStore{dbType: dbType, prefix: placeholderPrefix, stmts: make(map[string]*ParsedStmt)}
}

type StoreGroupedStmtKey struct {
	Group    string
	StmtName string
}

func (k StoreGroupedStmtKey) String() string {
	return k.Group + "." + k.StmtName
}

type GroupFS struct {
	Group string
	FS    fs.FS
}

var (
	groupsMu      sync.Mutex
	StoreRegistry []GroupFS
)

// RegisterGroup adds the `sql/` directory of fsys (usually an embed.FS) under group.
func RegisterGroup(fsys fs.FS, group string) {
	groupsMu.Lock()
	defer groupsMu.Unlock()
	StoreRegistry = append(StoreRegistry, GroupFS{FS: fsys, Group: group})
}

func registeredGroups() []GroupFS {
	groupsMu.Lock()
	defer groupsMu.Unlock()
	return slices.Clone(StoreRegistry)
}

// Load reads every registered group. All statements are parsed; the ones
// that fail are reported together and left out of the store.
func (s *StmtStore) Load() error {
	return s.LoadGroups(registeredGroups()...)
}

func (s *StmtStore) LoadGroups(groups ...GroupFS) error {
	var out error
	stmtCnt := 0
	for _, g := range groups {
		entries, err := fs.ReadDir(g.FS, "sql")
		if err != nil {
			return fmt.Errorf("failed to read `sql` dir of group %s: %w", g.Group, err)
		}
		overridden := map[string]bool{}
		// dialect files first so they win over `.sql`
		slices.SortStableFunc(entries, func(a, b fs.DirEntry) int {
			return dialectRank(a.Name(), s.dbType) - dialectRank(b.Name(), s.dbType)
		})
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			filename := e.Name()
			ext := path.Ext(filename)
			name := strings.TrimSuffix(filename, ext)
			ext = strings.TrimPrefix(ext, ".")
			if ext != s.dbType && ext != "sql" {
				continue
			}
			key := StoreGroupedStmtKey{Group: g.Group, StmtName: name}.String()
			if ext == "sql" && overridden[key] {
				continue
			}
			data, err := fs.ReadFile(g.FS, path.Join("sql", filename))
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filename, err)
			}
			parsed, err := ParseStatement(string(data))
			if err != nil {
				out = multierr.Append(out, fmt.Errorf("%s (%s): %w", key, filename, err))
				continue
			}
			s.stmts[key] = parsed
			overridden[key] = ext == s.dbType
			stmtCnt++
		}
	}
	log.Infof("[%s] %d sql stmts loaded for %d groups", s.dbType, stmtCnt, len(groups))
	return out
}

func dialectRank(filename, dbType string) int {
	if strings.TrimPrefix(path.Ext(filename), ".") == dbType {
		return 0
	}
	return 1
}

func (s *StmtStore) Set(key string, parsed *ParsedStmt) {
	s.stmts[key] = parsed
}

func (s *StmtStore) Get(key string) (*ParsedStmt, bool) {
	stmt, exists := s.stmts[key]
	return stmt, exists
}

// SQL returns the statement rendered for the store's database type.
func (s *StmtStore) SQL(key string) (string, bool) {
	stmt, exists := s.stmts[key]
	if !exists {
		return "", false
	}
	return stmt.Render(s.prefix), true
}

// MustSQL is SQL that panics on a missing key.
func (s *StmtStore) MustSQL(key string) string {
	q, ok := s.SQL(key)
	if !ok {
		panic(fmt.Sprintf("sqldb: statement %q not found in %s store", key, s.dbType))
	}
	return q
}

func (s *StmtStore) Keys() []string {
	keys := make([]string, 0, len(s.stmts))
	for k := range s.stmts {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
