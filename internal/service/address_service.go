package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
)

var (
	ErrInvalidAddress  = errors.New("invalid address")
	ErrAddressNotFound = errors.New("address not found")
	ErrAddressLimit    = errors.New("address book is full")
)

const maxAddresses = 20

// AddressStore is the key-value storage address books are kept in
type AddressStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// AddressService manages each customer's saved delivery addresses.
// A non-empty book always has exactly one default address.
type AddressService struct {
	store AddressStore
	newID func() string

	mu sync.Mutex
}

// NewAddressService creates a new address service
func NewAddressService(store AddressStore) *AddressService {
	return &AddressService{
		store: store,
		newID: uuid.NewString,
	}
}

func addressKey(userID string) string {
	return "user:" + userID + ":addresses"
}

// List returns the saved addresses of userID
func (s *AddressService) List(ctx context.Context, userID string) ([]models.SavedAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load(ctx, userID)
}

// Get returns one saved address
func (s *AddressService) Get(ctx context.Context, userID, id string) (*models.SavedAddress, error) {
	book, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, a := range book {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, ErrAddressNotFound
}

// Default returns the default address of userID, if the book is not empty
func (s *AddressService) Default(ctx context.Context, userID string) (*models.SavedAddress, bool, error) {
	book, err := s.List(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	for _, a := range book {
		if a.IsDefault {
			return &a, true, nil
		}
	}
	return nil, false, nil
}

// Add saves a new address. The first address of a book becomes the default.
func (s *AddressService) Add(ctx context.Context, userID string, in models.AddressInput) (*models.SavedAddress, error) {
	in, err := validateAddressInput(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(book) >= maxAddresses {
		return nil, ErrAddressLimit
	}

	added := models.SavedAddress{
		ID:              s.newID(),
		Label:           in.Label,
		IsDefault:       in.IsDefault || len(book) == 0,
		DeliveryAddress: in.DeliveryAddress,
	}
	book = append(book, added)
	if added.IsDefault {
		markDefault(book, added.ID)
	}

	if err := s.save(ctx, userID, book); err != nil {
		return nil, err
	}
	return &added, nil
}

// Update replaces a saved address. Clearing IsDefault on the default address
// keeps it the default, since a book always has one.
func (s *AddressService) Update(ctx context.Context, userID, id string, in models.AddressInput) (*models.SavedAddress, error) {
	in, err := validateAddressInput(in)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	i := indexOf(book, id)
	if i < 0 {
		return nil, ErrAddressNotFound
	}

	book[i].Label = in.Label
	book[i].DeliveryAddress = in.DeliveryAddress
	if in.IsDefault {
		markDefault(book, id)
	}

	if err := s.save(ctx, userID, book); err != nil {
		return nil, err
	}
	updated := book[i]
	return &updated, nil
}

// Delete removes a saved address. Deleting the default promotes the first
// remaining address.
func (s *AddressService) Delete(ctx context.Context, userID, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	book, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	i := indexOf(book, id)
	if i < 0 {
		return ErrAddressNotFound
	}

	wasDefault := book[i].IsDefault
	book = append(book[:i], book[i+1:]...)
	if wasDefault && len(book) > 0 {
		markDefault(book, book[0].ID)
	}
	return s.save(ctx, userID, book)
}

// load must be called with s.mu held
func (s *AddressService) load(ctx context.Context, userID string) ([]models.SavedAddress, error) {
	if userID == "" {
		return nil, ErrMissingID
	}
	raw, ok, err := s.store.Get(ctx, addressKey(userID))
	if err != nil {
		return nil, fmt.Errorf("read address book: %w", err)
	}
	book := []models.SavedAddress{}
	if !ok || raw == "" {
		return book, nil
	}
	if err := json.Unmarshal([]byte(raw), &book); err != nil {
		return nil, fmt.Errorf("decode address book: %w", err)
	}
	return book, nil
}

func (s *AddressService) save(ctx context.Context, userID string, book []models.SavedAddress) error {
	data, err := json.Marshal(book)
	if err != nil {
		return fmt.Errorf("encode address book: %w", err)
	}
	if err := s.store.Set(ctx, addressKey(userID), string(data)); err != nil {
		return fmt.Errorf("persist address book: %w", err)
	}
	return nil
}

func indexOf(book []models.SavedAddress, id string) int {
	for i := range book {
		if book[i].ID == id {
			return i
		}
	}
	return -1
}

func markDefault(book []models.SavedAddress, id string) {
	for i := range book {
		book[i].IsDefault = book[i].ID == id
	}
}

func validateAddressInput(in models.AddressInput) (models.AddressInput, error) {
	in.Label = strings.TrimSpace(in.Label)
	in.Street = strings.TrimSpace(in.Street)
	in.City = strings.TrimSpace(in.City)
	in.State = strings.TrimSpace(in.State)
	in.ZipCode = strings.TrimSpace(in.ZipCode)
	in.Country = strings.TrimSpace(in.Country)

	required := []struct{ name, value string }{
		{"label", in.Label},
		{"street", in.Street},
		{"city", in.City},
		{"state", in.State},
		{"zipCode", in.ZipCode},
	}
	for _, f := range required {
		if f.value == "" {
			return in, fmt.Errorf("%w: %s is required", ErrInvalidAddress, f.name)
		}
	}
	return in, nil
}
