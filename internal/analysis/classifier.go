package analysis

import "strings"

// SignatureSet holds normalized 4-byte selectors for membership tests.
type SignatureSet map[string]struct{}

// NewSignatureSet builds a set from selector strings. Entries are
// lowercased and prefixed with 0x so config may list either form.
func NewSignatureSet(selectors []string) SignatureSet {
	set := make(SignatureSet, len(selectors))
	for _, s := range selectors {
		set[normalizeSelector(s)] = struct{}{}
	}
	return set
}

// Contains reports whether the selector is in the set.
func (s SignatureSet) Contains(selector string) bool {
	_, ok := s[normalizeSelector(selector)]
	return ok
}

func normalizeSelector(selector string) string {
	selector = strings.ToLower(strings.TrimSpace(selector))
	if !strings.HasPrefix(selector, "0x") {
		selector = "0x" + selector
	}
	return selector
}

// Classifier labels raw events by function selector. Selector lists are
// configuration; classification logic never changes with them.
type Classifier struct {
	stake   SignatureSet
	unstake SignatureSet
}

// NewClassifier constructs a classifier from the configured selector lists.
func NewClassifier(stakeSignatures, unstakeSignatures []string) *Classifier {
	return &Classifier{
		stake:   NewSignatureSet(stakeSignatures),
		unstake: NewSignatureSet(unstakeSignatures),
	}
}

// Classify labels a single raw event. The stake list is checked first,
// so a selector present in both lists resolves to stake.
func (c *Classifier) Classify(event RawEvent) ClassifiedEvent {
	kind := KindIgnored
	switch {
	case c.stake.Contains(event.Selector):
		kind = KindStake
	case c.unstake.Contains(event.Selector):
		kind = KindUnstake
	}
	return ClassifiedEvent{RawEvent: event, Kind: kind}
}

// ClassifyAll labels every event in input order.
func (c *Classifier) ClassifyAll(events []RawEvent) []ClassifiedEvent {
	classified := make([]ClassifiedEvent, 0, len(events))
	for _, event := range events {
		classified = append(classified, c.Classify(event))
	}
	return classified
}
