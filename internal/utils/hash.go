package utils

import (
	"fmt"
	"hash/fnv"
)

func HashStringToUint64(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// FakeCallSID builds a stable 34 character identifier shaped like a provider call sid.
func FakeCallSID(seed string) string {
	h := HashStringToUint64(seed)
	return fmt.Sprintf("CA%016x%016x", h, HashStringToUint64(fmt.Sprint(h)))
}
