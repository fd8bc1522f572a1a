package snapshot

import (
	"context"
	"errors"

	"github.com/gotomicro/ekit/bean/option"
	"go.uber.org/zap"

	"eserial/schema"
	"eserial/store"
)

const (
	// MetaType names the root type of a packed graph.
	MetaType = "type"
	// MetaKey records the key a frame was saved under.
	MetaKey = "key"
)

// Repository saves graphs as frames in a store.
type Repository struct {
	store  store.Store
	snap   *Snapshotter
	logger *zap.Logger
}

func NewRepository(s store.Store, snap *Snapshotter, opts ...option.Option[Repository]) *Repository {
	r := &Repository{
		store:  s,
		snap:   snap,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func RepositoryWithLogger(l *zap.Logger) option.Option[Repository] {
	return func(r *Repository) {
		r.logger = l
	}
}

// Save stores root under key and returns the key. An empty key is replaced by
// the frame id.
func (r *Repository) Save(ctx context.Context, key string, root schema.Object) (string, error) {
	f, err := r.snap.Pack(ctx, root, nil)
	if err != nil {
		return "", err
	}
	if key == "" {
		key = f.ID.String()
	}
	f.Meta[MetaKey] = key
	bs, err := EncodeFrame(f)
	if err != nil {
		return "", err
	}
	if err = r.store.Put(ctx, key, bs); err != nil {
		r.logger.Error("snapshot save failed", zap.String("key", key), zap.Error(err))
		return "", err
	}
	r.logger.Debug("snapshot saved",
		zap.String("key", key),
		zap.Stringer("id", f.ID),
		zap.String("type", f.Meta[MetaType]),
		zap.Uint8("compresser", f.Compresser),
		zap.Int("bytes", len(bs)))
	return key, nil
}

func (r *Repository) Load(ctx context.Context, key string) (schema.Object, error) {
	f, err := r.Frame(ctx, key)
	if err != nil {
		return nil, err
	}
	root, err := r.snap.Unpack(ctx, f)
	if err != nil {
		r.logger.Warn("snapshot unreadable", zap.String("key", key), zap.Stringer("id", f.ID), zap.Error(err))
		return nil, err
	}
	return root, nil
}

// Frame fetches the raw frame stored under key without decoding its graph.
func (r *Repository) Frame(ctx context.Context, key string) (*Frame, error) {
	bs, err := r.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			r.logger.Error("snapshot load failed", zap.String("key", key), zap.Error(err))
		}
		return nil, err
	}
	return DecodeFrame(bs)
}

func (r *Repository) Delete(ctx context.Context, key string) error {
	return r.store.Delete(ctx, key)
}
