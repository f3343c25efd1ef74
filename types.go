package miscreant

import "github.com/miscreant/miscreant-go/siv"

// Algorithm identifies an AES-SIV family member by name, as accepted by
// New and by the STREAM constructors.
type Algorithm string

const (
	// AlgorithmAESSIV is the RFC 5297 construction driven by CMAC.
	AlgorithmAESSIV Algorithm = "AES-SIV"
	// AlgorithmAESCMACSIV is an alias of AlgorithmAESSIV.
	AlgorithmAESCMACSIV Algorithm = "AES-CMAC-SIV"
	// AlgorithmAESPMACSIV drives S2V with the parallelizable PMAC.
	AlgorithmAESPMACSIV Algorithm = "AES-PMAC-SIV"
)

// macChoice resolves an Algorithm name to the underlying siv.MACChoice,
// rejecting anything else at construction time.
func macChoice(alg Algorithm) (siv.MACChoice, error) {
	switch alg {
	case AlgorithmAESSIV, AlgorithmAESCMACSIV:
		return siv.CMAC, nil
	case AlgorithmAESPMACSIV:
		return siv.PMAC, nil
	default:
		return 0, &ArgumentError{
			Field:   "algorithm",
			Value:   string(alg),
			Message: "must be one of AES-SIV, AES-CMAC-SIV, AES-PMAC-SIV",
			Err:     ErrInvalidAlgorithm,
		}
	}
}
