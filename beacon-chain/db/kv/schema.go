package kv

// The schema will define how to store and retrieve data from the db.
// Blocks and states are keyed by block root. Checkpoint states are keyed by the
// big endian epoch followed by the root, so a cursor walks them in epoch order.
var (
	blocksBucket               = []byte("blocks")
	stateBucket                = []byte("state")
	checkpointStateBucket      = []byte("checkpoint-states")
	latestMessagesBucket       = []byte("latest-messages")
	chainMetadataBucket        = []byte("chain-metadata")
	finalizedCheckpointsBucket = []byte("finalized-checkpoints")

	// Metadata keys.
	seqKey           = []byte("commit-seq")
	timeKey          = []byte("store-time")
	genesisTimeKey   = []byte("genesis-time")
	justifiedKey     = []byte("justified-checkpoint")
	bestJustifiedKey = []byte("best-justified-checkpoint")
	finalizedKey     = []byte("finalized-checkpoint")
)
