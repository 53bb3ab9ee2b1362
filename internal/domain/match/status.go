package match

// ResolutionState tracks a resolution run through its phases. Terminal
// states are FAILED_NO_QUORUM, FAILED_VERIFICATION and DONE; all three
// are outcomes, not errors.
type ResolutionState string

const (
	StateCollecting         ResolutionState = "COLLECTING"
	StateResolving          ResolutionState = "RESOLVING"
	StateFailedNoQuorum     ResolutionState = "FAILED_NO_QUORUM"
	StateVerifying          ResolutionState = "VERIFYING"
	StateVerified           ResolutionState = "VERIFIED"
	StateFailedVerification ResolutionState = "FAILED_VERIFICATION"
	StateRanking            ResolutionState = "RANKING"
	StateDone               ResolutionState = "DONE"
)
