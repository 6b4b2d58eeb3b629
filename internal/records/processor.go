package records

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/roach88/tessera/internal/auth"
	"github.com/roach88/tessera/internal/index"
	"github.com/roach88/tessera/internal/message"
	"github.com/roach88/tessera/internal/store"
)

// MessageStore is the message persistence surface the processor needs.
// Implemented by store.Store.
type MessageStore interface {
	QueryRecord(ctx context.Context, tenant, recordID string) ([]store.Entry, error)
	PutNewest(ctx context.Context, e store.Entry) error
	DeleteMessage(ctx context.Context, tenant, cid string) error
}

// DataStore is the payload blob surface the processor needs.
// Implemented by store.DataStore.
type DataStore interface {
	DeleteData(ctx context.Context, tenant, dataCID string) error
}

// EventLog is the append-only event surface the processor needs.
// Implemented by store.Store.
type EventLog interface {
	Append(ctx context.Context, tenant, cid string, idx index.Record) error
	DeleteEvent(ctx context.Context, tenant, cid string) error
}

// Processor handles record mutations for all tenants.
// It owns no long-lived resources beyond the keyed mutex; the stores are
// shared, externally owned collaborators.
type Processor struct {
	msgs   MessageStore
	data   DataStore
	events EventLog
	authn  auth.Authenticator
	locks  *keyedMutex
	log    *slog.Logger
}

// NewProcessor wires a processor to its collaborators.
// A nil logger falls back to slog.Default().
func NewProcessor(msgs MessageStore, data DataStore, events EventLog, authn auth.Authenticator, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		msgs:   msgs,
		data:   data,
		events: events,
		authn:  authn,
		locks:  newKeyedMutex(),
		log:    logger,
	}
}

// HandleDelete processes an incoming RecordsDelete.
//
// The returned Outcome is the protocol decision (accepted, conflict,
// not-found, bad-request, unauthorized); a non-nil error means
// infrastructure failure with no decision taken. Rejecting outcomes have no
// side effects. Once the accepted message is persisted the operation runs
// to completion or leaves a state recoverable by retry - every downstream
// write is idempotent.
func (p *Processor) HandleDelete(ctx context.Context, tenant string, raw []byte) (Outcome, error) {
	del, err := message.ParseDelete(raw)
	if err != nil {
		if message.IsValidation(err) {
			return badRequest(err.Error()), nil
		}
		return Outcome{}, err
	}

	canonical, cid, err := canonicalAndCID(del)
	if err != nil {
		return badRequest(err.Error()), nil
	}

	if outcome, err := p.authenticate(ctx, tenant, cid, del.Authorization, del.Descriptor); err != nil || outcome.Status != 0 {
		return outcome, err
	}

	recordID := del.Descriptor.RecordID
	unlock := p.locks.Lock(tenant + "|" + recordID)
	defer unlock()

	existing, err := p.msgs.QueryRecord(ctx, tenant, recordID)
	if err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}

	incoming, err := message.NewOrderKey(del.Descriptor.MessageTimestamp, cid)
	if err != nil {
		return badRequest(err.Error()), nil
	}

	newest, newestKey, err := newestOf(existing)
	if err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}

	// Acceptance rule: strictly newest wins. With an empty existing set the
	// incoming message is trivially newest and falls through to the
	// existence rule. A redelivery of the stored newest message is not a
	// conflict: it re-runs the idempotent persist steps below, so a handling
	// interrupted between the message put and the event append converges on
	// the next delivery.
	redelivered := newest != nil && newest.CID == cid
	if newest != nil && !incoming.After(newestKey) && !redelivered {
		p.logOutcome(tenant, recordID, cid, StatusConflict)
		return conflict(cid, "a newer message exists for this record"), nil
	}
	if len(existing) == 0 {
		p.logOutcome(tenant, recordID, cid, StatusNotFound)
		return notFound(cid, "record does not exist"), nil
	}
	if !redelivered && newest.Method == string(message.MethodDelete) {
		p.logOutcome(tenant, recordID, cid, StatusNotFound)
		return notFound(cid, "record is already deleted"), nil
	}

	initial, err := initialWrite(existing)
	if err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}

	idx := index.ForDelete(del, initial.write)
	entry := store.Entry{
		Tenant:           tenant,
		CID:              cid,
		Interface:        string(del.Descriptor.Interface),
		Method:           string(del.Descriptor.Method),
		RecordID:         recordID,
		MessageTimestamp: del.Descriptor.MessageTimestamp,
		Message:          canonical,
		Index:            idx,
	}
	if err := p.msgs.PutNewest(ctx, entry); err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}
	if err := p.appendEvent(ctx, tenant, cid, idx); err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}

	if err := PruneSupersededVersions(ctx, tenant, existing, cid, initial.entry.CID, p.msgs, p.data, p.events); err != nil {
		return Outcome{}, fmt.Errorf("handle delete %s: %w", recordID, err)
	}

	p.logOutcome(tenant, recordID, cid, StatusAccepted)
	return accepted(cid), nil
}

// HandleWrite processes an incoming RecordsWrite under the same
// newest-wins rule. The initial write for a fresh record identifier is
// trivially newest and establishes the record.
func (p *Processor) HandleWrite(ctx context.Context, tenant string, raw []byte) (Outcome, error) {
	w, err := message.ParseWrite(raw)
	if err != nil {
		if message.IsValidation(err) {
			return badRequest(err.Error()), nil
		}
		return Outcome{}, err
	}

	canonical, cid, err := canonicalAndCID(w)
	if err != nil {
		return badRequest(err.Error()), nil
	}

	if outcome, err := p.authenticate(ctx, tenant, cid, w.Authorization, w.Descriptor); err != nil || outcome.Status != 0 {
		return outcome, err
	}

	recordID := w.Descriptor.RecordID
	unlock := p.locks.Lock(tenant + "|" + recordID)
	defer unlock()

	existing, err := p.msgs.QueryRecord(ctx, tenant, recordID)
	if err != nil {
		return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
	}

	incoming, err := message.NewOrderKey(w.Descriptor.MessageTimestamp, cid)
	if err != nil {
		return badRequest(err.Error()), nil
	}

	newest, newestKey, err := newestOf(existing)
	if err != nil {
		return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
	}
	// Same rule as HandleDelete: a redelivery of the stored newest write
	// bypasses the conflict check and re-runs the idempotent persist steps.
	if newest != nil && !incoming.After(newestKey) && newest.CID != cid {
		p.logOutcome(tenant, recordID, cid, StatusConflict)
		return conflict(cid, "a newer message exists for this record"), nil
	}

	idx := index.ForWrite(w)
	entry := store.Entry{
		Tenant:           tenant,
		CID:              cid,
		Interface:        string(w.Descriptor.Interface),
		Method:           string(w.Descriptor.Method),
		RecordID:         recordID,
		MessageTimestamp: w.Descriptor.MessageTimestamp,
		Message:          canonical,
		Index:            idx,
	}
	if err := p.msgs.PutNewest(ctx, entry); err != nil {
		return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
	}
	if err := p.appendEvent(ctx, tenant, cid, idx); err != nil {
		return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
	}

	// Superseded intermediate versions go away; the initial write stays
	// even when this write supersedes it - it anchors provenance for the
	// whole record.
	if len(existing) > 0 {
		initial, err := initialWrite(existing)
		if err != nil {
			return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
		}
		if err := PruneSupersededVersions(ctx, tenant, existing, cid, initial.entry.CID, p.msgs, p.data, p.events); err != nil {
			return Outcome{}, fmt.Errorf("handle write %s: %w", recordID, err)
		}
	}

	p.logOutcome(tenant, recordID, cid, StatusAccepted)
	return accepted(cid), nil
}

// authenticate runs the auth boundary for a parsed message. Returns a
// non-zero Outcome for decision rejections, an error for infrastructure
// failure, or (zero, nil) to proceed.
func (p *Processor) authenticate(ctx context.Context, tenant, cid string, authz message.Authorization, descriptor any) (Outcome, error) {
	payload, err := signingPayload(descriptor)
	if err != nil {
		return badRequest(err.Error()), nil
	}
	if err := p.authn.Authenticate(ctx, tenant, authz.Author, payload, authz.Signature); err != nil {
		if auth.IsAuth(err) {
			return unauthorized(cid, err.Error()), nil
		}
		return Outcome{}, err
	}
	return Outcome{}, nil
}

// appendEvent appends to the event log, retrying once.
// The message put has already committed when this runs; both operations are
// idempotent, so on persistent failure the caller can re-handle the same
// message and the store reconverges instead of double-committing.
func (p *Processor) appendEvent(ctx context.Context, tenant, cid string, idx index.Record) error {
	if err := p.events.Append(ctx, tenant, cid, idx); err != nil {
		p.log.Warn("event append failed, retrying",
			slog.String("tenant", tenant), slog.String("cid", cid), slog.Any("error", err))
		if err := p.events.Append(ctx, tenant, cid, idx); err != nil {
			return fmt.Errorf("append event: %w", err)
		}
	}
	return nil
}

func (p *Processor) logOutcome(tenant, recordID, cid string, status int) {
	p.log.Info("mutation processed",
		slog.String("tenant", tenant),
		slog.String("recordId", recordID),
		slog.String("cid", cid),
		slog.Int("status", status))
}

// canonicalAndCID computes the canonical envelope bytes and content
// identifier of a parsed message.
func canonicalAndCID(m message.Message) ([]byte, string, error) {
	raw, err := json.Marshal(m)
	if err != nil {
		return nil, "", fmt.Errorf("marshal envelope: %w", err)
	}
	canonical, err := message.CanonicalBytes(raw)
	if err != nil {
		return nil, "", err
	}
	cid, err := message.EnvelopeCID(canonical)
	if err != nil {
		return nil, "", err
	}
	return canonical, cid, nil
}

// signingPayload returns the canonical descriptor bytes a signature covers.
func signingPayload(descriptor any) ([]byte, error) {
	raw, err := json.Marshal(descriptor)
	if err != nil {
		return nil, fmt.Errorf("marshal descriptor: %w", err)
	}
	return message.CanonicalBytes(raw)
}

// newestOf finds the newest entry by the order relation.
// Entries arrive already sorted (timestamp ASC, cid ASC) but the scan
// recomputes keys rather than trusting store ordering - the comparison here
// is the one the protocol is defined by.
func newestOf(entries []store.Entry) (*store.Entry, message.OrderKey, error) {
	var newest *store.Entry
	var newestKey message.OrderKey
	for i := range entries {
		key, err := message.NewOrderKey(entries[i].MessageTimestamp, entries[i].CID)
		if err != nil {
			return nil, message.OrderKey{}, fmt.Errorf("entry %s: %w", entries[i].CID, err)
		}
		if newest == nil || key.After(newestKey) {
			newest = &entries[i]
			newestKey = key
		}
	}
	return newest, newestKey, nil
}

// initialEntry pairs a stored entry with its decoded write envelope.
type initialEntry struct {
	entry store.Entry
	write *message.RecordsWrite
}

// initialWrite locates the record's originating write: the earliest write
// in the message set. Required to exist whenever a non-delete prior message
// exists; its absence means the store lost provenance.
func initialWrite(entries []store.Entry) (initialEntry, error) {
	var found *store.Entry
	var foundKey message.OrderKey
	for i := range entries {
		if entries[i].Method != string(message.MethodWrite) {
			continue
		}
		key, err := message.NewOrderKey(entries[i].MessageTimestamp, entries[i].CID)
		if err != nil {
			return initialEntry{}, fmt.Errorf("entry %s: %w", entries[i].CID, err)
		}
		if found == nil || key.Before(foundKey) {
			found = &entries[i]
			foundKey = key
		}
	}
	if found == nil {
		return initialEntry{}, fmt.Errorf("record has messages but no initial write")
	}

	var w message.RecordsWrite
	if err := json.Unmarshal(found.Message, &w); err != nil {
		return initialEntry{}, fmt.Errorf("decode initial write %s: %w", found.CID, err)
	}
	return initialEntry{entry: *found, write: &w}, nil
}
