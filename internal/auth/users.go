package auth

import (
	"sync"

	"github.com/google/uuid"

	"vocab-sprint/internal/domain"
)

type account struct {
	user domain.User
	hash []byte
}

// Directory is the in-memory account registry, keyed by normalised email.
type Directory struct {
	mu       sync.RWMutex
	byEmail  map[string]account
	byUserID map[string]string
}

func NewDirectory() *Directory {
	return &Directory{
		byEmail:  make(map[string]account),
		byUserID: make(map[string]string),
	}
}

func (d *Directory) create(email string, hash []byte) (domain.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.byEmail[email]; ok {
		return domain.User{}, domain.ErrEmailTaken
	}
	user := domain.User{ID: uuid.NewString(), Email: email}
	d.byEmail[email] = account{user: user, hash: hash}
	d.byUserID[user.ID] = email
	return user, nil
}

func (d *Directory) findByEmail(email string) (account, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.byEmail[email]
	return acct, ok
}

// Lookup returns the user with the given ID.
func (d *Directory) Lookup(userID string) (domain.User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	email, ok := d.byUserID[userID]
	if !ok {
		return domain.User{}, false
	}
	return d.byEmail[email].user, true
}
