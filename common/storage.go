package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
)

// SetSerialized serializes data and puts it into contract storage.
func SetSerialized(ctx storage.Context, key interface{}, value interface{}) {
	data := std.Serialize(value)
	storage.Put(ctx, key, data)
}

// GetInt returns integer value stored by the key or 0 if there is no such
// value.
func GetInt(ctx storage.Context, key interface{}) int {
	v := storage.Get(ctx, key)
	if v == nil {
		return 0
	}

	return v.(int)
}

// GetHash160 returns address stored by the key. It panics if stored value is
// missing or malformed.
func GetHash160(ctx storage.Context, key interface{}) interop.Hash160 {
	v := storage.Get(ctx, key)
	if v == nil {
		panic("missing address in the storage")
	}

	h := v.(interop.Hash160)
	if len(h) != interop.Hash160Len {
		panic("invalid address in the storage")
	}

	return h
}
