package llm

import "fmt"

// ProviderError is returned when the upstream completion transport failed,
// either immediately on a non-transient error or after exhausting retries.
type ProviderError struct {
	Attempts  int
	Transient bool
	Err       error
}

func (e *ProviderError) Error() string {
	if e.Transient {
		return fmt.Sprintf("completion provider failed after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("completion provider failed: %v", e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}
