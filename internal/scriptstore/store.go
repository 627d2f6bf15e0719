package scriptstore

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/pkg/errors"
	"golang.org/x/crypto/blake2b"

	"github.com/iotaledger/hive.go/kvstore"
	"github.com/iotaledger/hive.go/logger"
	"github.com/iotaledger/hive.go/runtime/event"
	"github.com/iotaledger/hive.go/runtime/syncutils"
	"github.com/iotaledger/hive.go/serializer/v2/marshalutil"

	"github.com/dueldanov/sigscript/internal/sigscript"
)

const (
	// Storage key prefixes
	StorePrefixScript   byte = 0
	StorePrefixChecksum byte = 1
)

// StoreRealm is the kvstore realm holding signal scripts.
var StoreRealm = []byte{0x5C}

var (
	ErrScriptNotFound   = sigscript.ErrScriptNotFound
	ErrChecksumMismatch = errors.New("script checksum mismatch")
)

// Events contains store events. Both carry the signal type.
type Events struct {
	ScriptStored  *event.Event1[string]
	ScriptDeleted *event.Event1[string]
}

// Store persists signal scripts by signal type. It implements
// sigscript.ScriptRepository.
type Store struct {
	*logger.WrappedLogger

	Events *Events

	// mutex orders reads that fill the cache against writes that invalidate it.
	mutex syncutils.RWMutex
	store kvstore.KVStore
	cache *ScriptCache
}

var _ sigscript.ScriptRepository = (*Store)(nil)

// NewStore creates a store inside the script realm of store. cache may be nil.
func NewStore(log *logger.Logger, store kvstore.KVStore, cache *ScriptCache) (*Store, error) {
	scriptStore, err := store.WithRealm(StoreRealm)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open script realm")
	}

	if cache == nil {
		cache = NewScriptCache(0, 0)
	}

	return &Store{
		WrappedLogger: logger.NewWrappedLogger(log),
		Events: &Events{
			ScriptStored:  event.New1[string](),
			ScriptDeleted: event.New1[string](),
		},
		store: scriptStore,
		cache: cache,
	}, nil
}

// Put validates and stores script under its signal type, replacing any
// previous script.
func (s *Store) Put(script *sigscript.Script) error {
	if err := sigscript.Validate(script); err != nil {
		return err
	}

	data, err := json.Marshal(NewScriptDocument(script))
	if err != nil {
		return errors.Wrapf(err, "failed to encode script %s", script.Name)
	}
	digest := blake2b.Sum256(data)

	if err := s.write(script.Name, func(batch kvstore.BatchedMutations) error {
		if err := batch.Set(scriptKey(StorePrefixScript, script.Name), data); err != nil {
			return errors.Wrapf(err, "failed to store script %s", script.Name)
		}
		if err := batch.Set(scriptKey(StorePrefixChecksum, script.Name), digest[:]); err != nil {
			return errors.Wrapf(err, "failed to store checksum of script %s", script.Name)
		}
		return nil
	}); err != nil {
		return err
	}

	s.LogDebugf("stored script %s (%d bytes)", script.Name, len(data))
	s.Events.ScriptStored.Trigger(script.Name)

	return nil
}

// Get returns the script of signalType.
func (s *Store) Get(signalType string) (*sigscript.Script, error) {
	if script := s.cache.Get(signalType); script != nil {
		return script, nil
	}

	s.mutex.RLock()
	defer s.mutex.RUnlock()

	data, err := s.store.Get(scriptKey(StorePrefixScript, signalType))
	if err != nil {
		if errors.Is(err, kvstore.ErrKeyNotFound) {
			return nil, errors.Wrap(ErrScriptNotFound, signalType)
		}
		return nil, errors.Wrapf(err, "failed to read script %s", signalType)
	}

	digest, err := s.store.Get(scriptKey(StorePrefixChecksum, signalType))
	if err != nil && !errors.Is(err, kvstore.ErrKeyNotFound) {
		return nil, errors.Wrapf(err, "failed to read checksum of script %s", signalType)
	}
	actual := blake2b.Sum256(data)
	if !bytes.Equal(digest, actual[:]) {
		return nil, errors.Wrap(ErrChecksumMismatch, signalType)
	}

	var doc ScriptDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode script %s", signalType)
	}
	script, err := doc.Script()
	if err != nil {
		return nil, err
	}

	s.cache.Put(signalType, script)

	return script, nil
}

// Lookup returns the script of signalType, or nil when there is none or it
// cannot be read.
func (s *Store) Lookup(signalType string) *sigscript.Script {
	script, err := s.Get(signalType)
	if err != nil {
		if !errors.Is(err, ErrScriptNotFound) {
			s.LogWarnf("script of signal type %s unusable, applying fallback: %s", signalType, err)
		}
		return nil
	}

	return script
}

// Delete removes the script of signalType.
func (s *Store) Delete(signalType string) error {
	if err := s.write(signalType, func(batch kvstore.BatchedMutations) error {
		if err := batch.Delete(scriptKey(StorePrefixScript, signalType)); err != nil {
			return errors.Wrapf(err, "failed to delete script %s", signalType)
		}
		if err := batch.Delete(scriptKey(StorePrefixChecksum, signalType)); err != nil {
			return errors.Wrapf(err, "failed to delete checksum of script %s", signalType)
		}
		return nil
	}); err != nil {
		return err
	}

	s.Events.ScriptDeleted.Trigger(signalType)

	return nil
}

// write applies mutate as one batch and invalidates the cached script of
// signalType while no reader can refill it.
func (s *Store) write(signalType string, mutate func(batch kvstore.BatchedMutations) error) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	batch, err := s.store.Batched()
	if err != nil {
		return errors.Wrap(err, "failed to create batch")
	}
	if err := mutate(batch); err != nil {
		batch.Cancel()
		return err
	}
	if err := batch.Commit(); err != nil {
		return errors.Wrapf(err, "failed to commit script %s", signalType)
	}

	s.cache.Invalidate(signalType)

	return nil
}

// SignalTypes lists the stored signal types in sorted order.
func (s *Store) SignalTypes() ([]string, error) {
	var signalTypes []string

	if err := s.store.IterateKeys([]byte{StorePrefixScript}, func(key kvstore.Key) bool {
		signalTypes = append(signalTypes, string(key[1:]))
		return true
	}); err != nil {
		return nil, errors.Wrap(err, "failed to iterate scripts")
	}

	sort.Strings(signalTypes)

	return signalTypes, nil
}

// LoadDir stores every script file found in dir and returns how many were
// stored.
func (s *Store) LoadDir(dir string) (int, error) {
	scripts, err := ReadScriptDir(dir)
	if err != nil {
		return 0, err
	}

	for _, script := range scripts {
		if err := s.Put(script); err != nil {
			return 0, err
		}
	}

	s.LogInfof("loaded %d scripts from %s", len(scripts), dir)

	return len(scripts), nil
}

func scriptKey(prefix byte, signalType string) []byte {
	ms := marshalutil.New(1 + len(signalType))
	ms.WriteByte(prefix)
	ms.WriteBytes([]byte(signalType))
	return ms.Bytes()
}
