package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// CollectionKeyPrefix starts every resolved collection key
const CollectionKeyPrefix = "resource_metadata_collection_"

// CollectionKey returns the key of the resolved collection of a resource class.
// The class is hashed to keep namespace separators out of the key; version, when
// set, invalidates entries resolved against an older backend schema.
func CollectionKey(resourceClass, version string) string {
	hash := sha256.Sum256([]byte(resourceClass))
	key := CollectionKeyPrefix + hex.EncodeToString(hash[:])
	if version != "" {
		key += "_" + version
	}
	return key
}
