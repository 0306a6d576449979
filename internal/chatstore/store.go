// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chatstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/jeranaias/assistchat/internal/api"
	"github.com/jeranaias/assistchat/internal/model"
	"github.com/jeranaias/assistchat/internal/storage"
)

// Error variables for store operations.
var (
	// ErrNoConversationID indicates neither the caller nor the backend
	// supplied a conversation id.
	ErrNoConversationID = errors.New("no conversation id")

	// ErrConversationNotFound indicates the addressed conversation is not in
	// the store.
	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoBackend indicates a remote operation on a store built without one.
	ErrNoBackend = errors.New("no backend configured")
)

// Backend is the set of remote calls the store makes. *api.Client
// implements it.
type Backend interface {
	CreateConversation(ctx context.Context, assistantID int64) (*api.CreateConversationResponse, error)
	DeleteConversation(ctx context.Context, assistantID int64, conversationID string) error
	History(ctx context.Context, assistantID int64, conversationID string) ([]model.ChatRecord, error)
	SendMessage(ctx context.Context, assistantID int64, conversationID, text string) (*api.SendMessageResponse, error)
	UploadAttachment(ctx context.Context, assistantID int64, conversationID, filename string, file io.Reader) (*api.UploadAttachmentResponse, error)
}

// Observer receives a JSON snapshot of the mapping after each change.
type Observer func(snapshot []byte)

// Selection is the current assistant and conversation. Zero values mean
// nothing is selected; backend assistant ids start at 1.
type Selection struct {
	AssistantID    int64  `json:"currentAssistantId,omitempty"`
	ConversationID string `json:"currentConversationId,omitempty"`
}

// =============================================================================
// STORE
// =============================================================================

// Store is the conversation state.
type Store struct {
	backend Backend
	logger  *slog.Logger

	storage     storage.Storage
	persistOpts []storage.PersisterOption
	persister   *storage.Persister

	mu            sync.Mutex
	conversations *AssistantConversations
	selection     Selection
	observers     map[int]Observer
	nextObserver  int
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStorage hydrates the store from st and persists every change to it.
func WithStorage(st storage.Storage, opts ...storage.PersisterOption) Option {
	return func(s *Store) {
		s.storage = st
		s.persistOpts = opts
	}
}

// New creates a store. backend may be nil for read-only use.
func New(backend Backend, opts ...Option) *Store {
	s := &Store{
		backend:       backend,
		logger:        slog.Default(),
		conversations: NewAssistantConversations(),
		observers:     make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.storage != nil {
		s.conversations = s.hydrate()
		popts := append([]storage.PersisterOption{storage.WithLogger(s.logger)}, s.persistOpts...)
		s.persister = storage.NewPersister(s.storage, storage.KeyConversations, popts...)
		s.Subscribe(s.persister.Save)
	}
	return s
}

// hydrate reads the persisted mapping. Missing or malformed data yields an
// empty mapping.
func (s *Store) hydrate() *AssistantConversations {
	data, err := s.storage.Get(storage.KeyConversations)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.logger.Warn("failed to read conversations", "err", err)
		}
		return NewAssistantConversations()
	}

	convs := NewAssistantConversations()
	if err := json.Unmarshal(data, convs); err != nil {
		s.logger.Warn("discarding malformed conversation data", "err", err)
		return NewAssistantConversations()
	}
	normalize(convs)
	return convs
}

// normalize drops null entries and repeated conversation ids, keeps one
// opening message per conversation and files each conversation under the
// assistant it is stored with.
func normalize(convs *AssistantConversations) {
	seen := make(map[string]bool)
	for _, aid := range convs.Assistants() {
		list, _ := convs.List(aid)
		kept := make([]*model.Conversation, 0, len(list))
		for _, c := range list {
			if c == nil || seen[c.ID] {
				continue
			}
			seen[c.ID] = true
			c.AssistantID = aid
			if c.Messages == nil {
				c.Messages = []model.ChatRecord{}
			} else {
				c.Messages = model.EnforceSingleOpening(c.Messages)
			}
			kept = append(kept, c)
		}
		convs.Set(aid, kept)
	}
}

// Subscribe registers an observer and returns a function that removes it.
func (s *Store) Subscribe(fn Observer) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

// changedLocked publishes a snapshot to every observer. Caller holds s.mu.
func (s *Store) changedLocked() {
	if len(s.observers) == 0 {
		return
	}
	data, err := json.Marshal(s.conversations)
	if err != nil {
		s.logger.Error("failed to serialize conversations", "err", err)
		return
	}
	for _, fn := range s.observers {
		fn(data)
	}
}

// Flush blocks until every change made so far has been written to storage.
func (s *Store) Flush() {
	if s.persister != nil {
		s.persister.Flush()
	}
}

// Close writes any pending state and stops the background writer.
func (s *Store) Close() error {
	if s.persister != nil {
		return s.persister.Close()
	}
	return nil
}

// =============================================================================
// CONVERSATION LIFECYCLE
// =============================================================================

// CreateConversation adds a conversation for assistantID and selects it.
//
// A non-empty existingID restores that conversation; otherwise the backend
// issues the id and may supply an opening greeting. A non-nil seed becomes
// the message list after opening deduplication. Without a seed, the
// assistant's other conversations that have no user message are dropped.
// An existing conversation with the same id is updated in place and moved
// to the front.
func (s *Store) CreateConversation(ctx context.Context, assistantID int64, assistantName, existingID string, seed []model.ChatRecord) (*model.Conversation, error) {
	id := existingID
	var opening string

	if id == "" {
		if s.backend == nil {
			return nil, fmt.Errorf("create conversation: %w", ErrNoBackend)
		}
		resp, err := s.backend.CreateConversation(ctx, assistantID)
		if err != nil {
			s.logger.Error("failed to create conversation", "assistant_id", assistantID, "err", err)
			if errors.Is(err, api.ErrMissingID) {
				return nil, fmt.Errorf("create conversation for assistant %d: %w: %w", assistantID, ErrNoConversationID, err)
			}
			return nil, fmt.Errorf("create conversation for assistant %d: %w", assistantID, err)
		}
		if resp != nil {
			id = resp.ConversationID.String()
			opening = resp.OpeningMessage
		}
	}
	if id == "" {
		s.logger.Error("conversation has no id", "assistant_id", assistantID)
		return nil, fmt.Errorf("create conversation for assistant %d: %w", assistantID, ErrNoConversationID)
	}

	seeded := seed != nil
	var messages []model.ChatRecord
	switch {
	case seeded:
		messages = model.EnforceSingleOpening(seed)
	case opening != "":
		messages = []model.ChatRecord{model.NewOpeningMessage(opening)}
	default:
		messages = []model.ChatRecord{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-read after the remote call; another create may have changed the list.
	list, _ := s.conversations.List(assistantID)
	list = append([]*model.Conversation(nil), list...)

	if !seeded {
		kept := list[:0]
		for _, c := range list {
			if c.ID != id && c.IsEmpty() {
				continue
			}
			kept = append(kept, c)
		}
		list = kept
	}

	var conv *model.Conversation
	if i := indexOf(list, id); i >= 0 {
		conv = list[i]
		conv.AssistantName = assistantName
		if len(seed) > 0 {
			conv.Messages = messages
		}
		list = append(list[:i], list[i+1:]...)
	} else {
		s.removeElsewhereLocked(id, assistantID)
		conv = &model.Conversation{
			ID:            id,
			AssistantID:   assistantID,
			AssistantName: assistantName,
			Messages:      messages,
		}
	}
	list = append([]*model.Conversation{conv}, list...)
	s.conversations.Set(assistantID, list)

	s.selection = Selection{AssistantID: assistantID, ConversationID: id}
	s.changedLocked()
	return conv.Clone(), nil
}

// removeElsewhereLocked drops id from every assistant other than keep.
func (s *Store) removeElsewhereLocked(id string, keep int64) {
	for _, aid := range s.conversations.Assistants() {
		if aid == keep {
			continue
		}
		list, _ := s.conversations.List(aid)
		if i := indexOf(list, id); i >= 0 {
			list = append(append([]*model.Conversation(nil), list[:i]...), list[i+1:]...)
			s.conversations.Set(aid, list)
		}
	}
}

// DeleteConversation removes a conversation on the backend and then
// locally. A backend failure leaves the store unchanged. Deleting under an
// assistant the store has never seen is a no-op.
func (s *Store) DeleteConversation(ctx context.Context, conversationID string, assistantID int64) error {
	s.mu.Lock()
	_, ok := s.conversations.List(assistantID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	if s.backend == nil {
		return fmt.Errorf("delete conversation: %w", ErrNoBackend)
	}

	if err := s.backend.DeleteConversation(ctx, assistantID, conversationID); err != nil {
		s.logger.Error("failed to delete conversation",
			"assistant_id", assistantID, "conversation_id", conversationID, "err", err)
		return fmt.Errorf("delete conversation %s: %w", conversationID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, ok := s.conversations.List(assistantID)
	if !ok {
		return nil
	}
	if i := indexOf(list, conversationID); i >= 0 {
		list = append(append([]*model.Conversation(nil), list[:i]...), list[i+1:]...)
		s.conversations.Set(assistantID, list)
	}

	if s.selection.ConversationID == conversationID {
		s.selection.ConversationID = ""
		if len(list) > 0 {
			s.selection.ConversationID = list[0].ID
		}
	}
	s.changedLocked()
	return nil
}

// =============================================================================
// MESSAGES
// =============================================================================

// AddMessage appends msg to a conversation. It reports false when the
// conversation is unknown or msg is a second opening greeting.
func (s *Store) AddMessage(conversationID string, msg model.ChatRecord, assistantID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addMessageLocked(conversationID, msg, assistantID)
}

func (s *Store) addMessageLocked(conversationID string, msg model.ChatRecord, assistantID int64) bool {
	conv := s.findLocked(assistantID, conversationID)
	if conv == nil {
		return false
	}
	if msg.IsOpening() && model.HasOpening(conv.Messages) {
		return false
	}
	conv.Messages = append(conv.Messages, msg.Clone())
	s.changedLocked()
	return true
}

// SetConversationMessages replaces a conversation's messages, keeping only
// the first opening greeting. It reports false when the conversation is
// unknown.
func (s *Store) SetConversationMessages(conversationID string, assistantID int64, messages []model.ChatRecord) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(assistantID, conversationID)
	if conv == nil {
		return false
	}
	conv.Messages = model.EnforceSingleOpening(messages)
	s.changedLocked()
	return true
}

// EnforceSingleOpening keeps the first opening greeting in messages and
// drops the rest.
func EnforceSingleOpening(messages []model.ChatRecord) []model.ChatRecord {
	return model.EnforceSingleOpening(messages)
}

func (s *Store) findLocked(assistantID int64, conversationID string) *model.Conversation {
	list, _ := s.conversations.List(assistantID)
	if i := indexOf(list, conversationID); i >= 0 {
		return list[i]
	}
	return nil
}

// =============================================================================
// SELECTION
// =============================================================================

// SetCurrent selects a conversation. The pair is not validated.
func (s *Store) SetCurrent(conversationID string, assistantID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = Selection{AssistantID: assistantID, ConversationID: conversationID}
}

// Current returns the selection.
func (s *Store) Current() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection
}

// =============================================================================
// PROJECTIONS
// =============================================================================

// ConversationsByAssistant returns copies of an assistant's conversations,
// most recent first.
func (s *Store) ConversationsByAssistant(assistantID int64) []*model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	list, _ := s.conversations.List(assistantID)
	return cloneList(list)
}

// Conversation returns a copy of one conversation.
func (s *Store) Conversation(assistantID int64, conversationID string) (*model.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	conv := s.findLocked(assistantID, conversationID)
	return conv.Clone(), conv != nil
}

// CurrentConversation returns a copy of the selected conversation, or nil.
func (s *Store) CurrentConversation() *model.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.selection.ConversationID == "" {
		return nil
	}
	return s.findLocked(s.selection.AssistantID, s.selection.ConversationID).Clone()
}

// CurrentMessages returns the selected conversation's messages, or an empty
// list.
func (s *Store) CurrentMessages() []model.ChatRecord {
	if conv := s.CurrentConversation(); conv != nil {
		return conv.Messages
	}
	return []model.ChatRecord{}
}

// Assistants returns the ids of every assistant with a conversation list.
func (s *Store) Assistants() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversations.Assistants()
}

// Snapshot returns the JSON projection of the mapping.
func (s *Store) Snapshot() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return json.Marshal(s.conversations)
}

// =============================================================================
// REMOTE MESSAGE FLOWS
// =============================================================================

// HydrateHistory replaces a conversation's messages with the backend's
// history.
func (s *Store) HydrateHistory(ctx context.Context, assistantID int64, conversationID string) error {
	if s.backend == nil {
		return fmt.Errorf("load history: %w", ErrNoBackend)
	}
	if _, ok := s.Conversation(assistantID, conversationID); !ok {
		return fmt.Errorf("load history %s: %w", conversationID, ErrConversationNotFound)
	}

	records, err := s.backend.History(ctx, assistantID, conversationID)
	if err != nil {
		return fmt.Errorf("load history %s: %w", conversationID, err)
	}
	if !s.SetConversationMessages(conversationID, assistantID, records) {
		return fmt.Errorf("load history %s: %w", conversationID, ErrConversationNotFound)
	}
	return nil
}

// SendMessage appends the user's text, sends it through the fallback chat
// endpoint and appends the reply. When the send fails the user message
// stays in the conversation.
func (s *Store) SendMessage(ctx context.Context, assistantID int64, conversationID, text string) (model.ChatRecord, error) {
	if s.backend == nil {
		return model.ChatRecord{}, fmt.Errorf("send message: %w", ErrNoBackend)
	}
	if !s.AddMessage(conversationID, model.NewUserMessage(text), assistantID) {
		return model.ChatRecord{}, fmt.Errorf("send message to %s: %w", conversationID, ErrConversationNotFound)
	}

	resp, err := s.backend.SendMessage(ctx, assistantID, conversationID, text)
	if err != nil {
		s.logger.Warn("failed to send message", "assistant_id", assistantID, "conversation_id", conversationID, "err", err)
		return model.ChatRecord{}, fmt.Errorf("send message to %s: %w", conversationID, err)
	}
	if got := resp.ConversationID.String(); got != "" && got != conversationID {
		s.logger.Warn("backend replied for a different conversation",
			"conversation_id", conversationID, "reply_conversation_id", got)
	}

	reply := model.NewAssistantMessage(resp.Reply)
	if !s.AddMessage(conversationID, reply, assistantID) {
		// Deleted while the reply was in flight.
		return reply, fmt.Errorf("send message to %s: %w", conversationID, ErrConversationNotFound)
	}
	return reply, nil
}

// UploadAttachment uploads a file into a conversation and appends the
// resulting attachment message. An opening greeting returned with the
// upload is placed first unless the conversation already has one.
func (s *Store) UploadAttachment(ctx context.Context, assistantID int64, conversationID, filename string, file io.Reader) (model.ChatRecord, error) {
	if s.backend == nil {
		return model.ChatRecord{}, fmt.Errorf("upload attachment: %w", ErrNoBackend)
	}
	if _, ok := s.Conversation(assistantID, conversationID); !ok {
		return model.ChatRecord{}, fmt.Errorf("upload to %s: %w", conversationID, ErrConversationNotFound)
	}

	resp, err := s.backend.UploadAttachment(ctx, assistantID, conversationID, filename, file)
	if err != nil {
		s.logger.Warn("failed to upload attachment", "assistant_id", assistantID, "conversation_id", conversationID, "err", err)
		return model.ChatRecord{}, fmt.Errorf("upload %s: %w", filename, err)
	}

	msg := resp.Message
	if msg.Role == "" {
		msg.Role = model.RoleUser
	}
	if msg.MessageType == "" {
		msg.MessageType = model.MessageAttachment
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	conv := s.findLocked(assistantID, conversationID)
	if conv == nil {
		return msg, fmt.Errorf("upload to %s: %w", conversationID, ErrConversationNotFound)
	}
	if resp.OpeningMessage != "" && !model.HasOpening(conv.Messages) {
		conv.Messages = append([]model.ChatRecord{model.NewOpeningMessage(resp.OpeningMessage)}, conv.Messages...)
	}
	conv.Messages = append(conv.Messages, msg.Clone())
	s.changedLocked()
	return msg, nil
}
