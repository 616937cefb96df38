package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/docvault/document-system/internal/core/domain"
	"github.com/docvault/document-system/internal/core/ports"
	"github.com/docvault/document-system/internal/pkg/password"
	"github.com/docvault/document-system/internal/pkg/token"
)

// ---------------------------------------------------------------------------
// In-memory stub repositories
// ---------------------------------------------------------------------------

// stubUserRepo mirrors the Mongo repository: unique email and username,
// password excluded unless asked for, role left unresolved.
type stubUserRepo struct {
	users  map[string]domain.User
	nextID int
	writes int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]domain.User)}
}

func (r *stubUserRepo) checkUnique(u *domain.User) error {
	for id, other := range r.users {
		if id == u.ID {
			continue
		}
		if other.Email == u.Email {
			return &domain.ValidationError{Field: "email", Value: u.Email, Rule: domain.RuleUnique}
		}
		if other.Username == u.Username {
			return &domain.ValidationError{Field: "username", Value: u.Username, Rule: domain.RuleUnique}
		}
	}
	return nil
}

func (r *stubUserRepo) Insert(_ context.Context, u *domain.User) error {
	if err := r.checkUnique(u); err != nil {
		return err
	}
	r.nextID++
	u.ID = fmt.Sprintf("user-%d", r.nextID)
	stored := *u
	stored.Role = nil
	r.users[u.ID] = stored
	r.writes++
	return nil
}

func (r *stubUserRepo) Update(_ context.Context, u *domain.User) error {
	prev, ok := r.users[u.ID]
	if !ok {
		return domain.ErrUserNotFound
	}
	if err := r.checkUnique(u); err != nil {
		return err
	}
	stored := *u
	stored.Role = nil
	if stored.Password == "" {
		stored.Password = prev.Password
	}
	r.users[u.ID] = stored
	r.writes++
	return nil
}

func (r *stubUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.users[id]; !ok {
		return domain.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) project(u domain.User, includePassword bool) *domain.User {
	if !includePassword {
		u.Password = ""
	}
	return &u
}

func (r *stubUserRepo) FindByID(_ context.Context, id string, includePassword bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return r.project(u, includePassword), nil
}

func (r *stubUserRepo) matches(u domain.User, f ports.UserFilter) bool {
	if f.Email != "" && u.Email != f.Email {
		return false
	}
	if f.Username != "" && u.Username != f.Username {
		return false
	}
	if f.Login != "" && u.Email != f.Login && u.Username != f.Login {
		return false
	}
	if f.RoleID != "" && u.RoleID != f.RoleID {
		return false
	}
	return true
}

func (r *stubUserRepo) FindOne(ctx context.Context, f ports.UserFilter) (*domain.User, error) {
	found, _ := r.Find(ctx, f)
	if len(found) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return found[0], nil
}

func (r *stubUserRepo) Find(_ context.Context, f ports.UserFilter) ([]*domain.User, error) {
	ids := make([]string, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := []*domain.User{}
	for _, id := range ids {
		u := r.users[id]
		if r.matches(u, f) {
			out = append(out, r.project(u, f.IncludePassword))
		}
	}
	return out, nil
}

type stubRoleRepo struct {
	roles     []*domain.Role
	ensureErr error
	lookups   int
}

func newStubRoleRepo() *stubRoleRepo {
	return &stubRoleRepo{}
}

func (r *stubRoleRepo) EnsureTitles(_ context.Context, titles []string) error {
	if r.ensureErr != nil {
		return r.ensureErr
	}
	for _, t := range titles {
		exists := false
		for _, role := range r.roles {
			if role.Title == t {
				exists = true
				break
			}
		}
		if !exists {
			r.roles = append(r.roles, &domain.Role{ID: "role-" + t, Title: t})
		}
	}
	return nil
}

func (r *stubRoleRepo) FindByID(_ context.Context, id string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.ID == id {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) FindByIDs(_ context.Context, ids []string) ([]*domain.Role, error) {
	r.lookups++
	var out []*domain.Role
	for _, id := range ids {
		for _, role := range r.roles {
			if role.ID == id {
				clone := *role
				out = append(out, &clone)
			}
		}
	}
	return out, nil
}

func (r *stubRoleRepo) FindByTitle(_ context.Context, title string) (*domain.Role, error) {
	for _, role := range r.roles {
		if role.Title == title {
			clone := *role
			return &clone, nil
		}
	}
	return nil, domain.ErrRoleNotFound
}

func (r *stubRoleRepo) List(_ context.Context) ([]*domain.Role, error) {
	out := make([]*domain.Role, 0, len(r.roles))
	for _, role := range r.roles {
		clone := *role
		out = append(out, &clone)
	}
	return out, nil
}

type stubRevocations struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newStubRevocations() *stubRevocations {
	return &stubRevocations{revoked: make(map[string]time.Duration)}
}

func (s *stubRevocations) Revoke(_ context.Context, id string, ttl time.Duration) error {
	if s.err != nil {
		return s.err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.revoked[id] = ttl
	return nil
}

func (s *stubRevocations) IsRevoked(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok, nil
}

type stubDocumentRepo struct {
	docs      map[string]*domain.Document
	nextID    int
	lastList  ports.ListDocumentsFilter
	createErr error
}

func newStubDocumentRepo() *stubDocumentRepo {
	return &stubDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *stubDocumentRepo) Create(_ context.Context, d *domain.Document) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.nextID++
	d.ID = fmt.Sprintf("doc-%d", r.nextID)
	clone := *d
	r.docs[d.ID] = &clone
	return nil
}

func (r *stubDocumentRepo) FindByID(_ context.Context, id string) (*domain.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, domain.ErrDocumentNotFound
	}
	clone := *d
	return &clone, nil
}

func (r *stubDocumentRepo) Update(_ context.Context, d *domain.Document) error {
	if _, ok := r.docs[d.ID]; !ok {
		return domain.ErrDocumentNotFound
	}
	clone := *d
	r.docs[d.ID] = &clone
	return nil
}

func (r *stubDocumentRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.docs[id]; !ok {
		return domain.ErrDocumentNotFound
	}
	delete(r.docs, id)
	return nil
}

// List applies the same visibility and search rules the Mongo repo uses.
func (r *stubDocumentRepo) List(_ context.Context, f ports.ListDocumentsFilter) ([]*domain.Document, int64, error) {
	r.lastList = f

	ids := make([]string, 0, len(r.docs))
	for id := range r.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var matched []*domain.Document
	for _, id := range ids {
		d := r.docs[id]
		if !d.VisibleTo(f.Viewer) {
			continue
		}
		if f.OwnerID != "" && d.OwnerID != f.OwnerID {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(d.Title), strings.ToLower(f.Search)) {
			continue
		}
		clone := *d
		matched = append(matched, &clone)
	}

	total := int64(len(matched))
	skip := (f.Page - 1) * f.Limit
	if skip > len(matched) {
		return []*domain.Document{}, total, nil
	}
	end := skip + f.Limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

// countingHasher counts Hash calls on top of the real bcrypt hasher.
type countingHasher struct {
	*password.Hasher
	hashes int
}

func (h *countingHasher) Hash(plaintext string) (string, error) {
	h.hashes++
	return h.Hasher.Hash(plaintext)
}

// ---------------------------------------------------------------------------
// Fixtures
// ---------------------------------------------------------------------------

const testSecret = "test-secret"

type fixture struct {
	users  *stubUserRepo
	roles  *stubRoleRepo
	hasher *countingHasher
	issuer *token.Issuer
	svc    *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	roles := newStubRoleRepo()
	if err := roles.EnsureTitles(context.Background(), domain.DefaultRoles); err != nil {
		t.Fatalf("seed roles: %v", err)
	}
	issuer, err := token.NewIssuer(testSecret, 0)
	if err != nil {
		t.Fatalf("new issuer: %v", err)
	}
	hasher := &countingHasher{Hasher: password.NewHasher(bcrypt.MinCost)}
	users := newStubUserRepo()

	return &fixture{
		users:  users,
		roles:  roles,
		hasher: hasher,
		issuer: issuer,
		svc:    NewUserService(users, roles, hasher, issuer, zerolog.Nop()),
	}
}

func (f *fixture) newUser(t *testing.T, username, email, pw, roleTitle string) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Email: email}
	u.SetPassword(pw)
	if roleTitle != "" {
		role, err := f.roles.FindByTitle(context.Background(), roleTitle)
		if err != nil {
			t.Fatalf("role %s: %v", roleTitle, err)
		}
		u.RoleID = role.ID
	}
	if err := f.svc.Save(context.Background(), u); err != nil {
		t.Fatalf("save %s: %v", username, err)
	}
	return u
}
