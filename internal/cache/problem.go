package cache

import "fmt"

// Problem is the failure payload of a rejected operation. Status is zero for
// transport failures that never produced an HTTP response; Body carries the
// raw response body, if any, for the outcome pipeline to classify.
type Problem struct {
	Status  int
	Body    []byte
	Message string
}

func (p *Problem) Error() string {
	if p.Status == 0 {
		return fmt.Sprintf("request failed: %s", p.Message)
	}
	return fmt.Sprintf("request failed with status %d: %s", p.Status, p.Message)
}

func asProblem(err error) *Problem {
	if err == nil {
		return nil
	}
	if prob, ok := err.(*Problem); ok {
		return prob
	}
	return &Problem{Message: err.Error()}
}
