package synod

// QuorumSize returns the number of acceptors that make up a strict majority of n.
func QuorumSize(n int) int {
	return n/2 + 1
}

// IsQuorum returns true if votes acceptors out of n form a quorum.
func IsQuorum(votes, n int) bool {
	return n > 0 && votes >= QuorumSize(n)
}
