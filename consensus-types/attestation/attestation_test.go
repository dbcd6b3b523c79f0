package attestation

import (
	"testing"

	"github.com/prysmaticlabs/ghost/testing/assert"
	"github.com/prysmaticlabs/go-bitfield"
)

func TestAttestation_IsNil(t *testing.T) {
	var a *Attestation
	assert.True(t, a.IsNil())
	assert.True(t, (&Attestation{}).IsNil())
	assert.False(t, (&Attestation{AggregationBits: bitfield.NewBitlist(4), Data: &Data{}}).IsNil())
}
