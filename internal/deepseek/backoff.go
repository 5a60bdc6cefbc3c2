package deepseek

import "time"

// doublingBackOff yields base, 2·base, 4·base, ... without jitter.
type doublingBackOff struct {
	base time.Duration
	n    int
}

func (b *doublingBackOff) NextBackOff() time.Duration {
	d := b.base << b.n
	b.n++
	return d
}

func (b *doublingBackOff) Reset() { b.n = 0 }
