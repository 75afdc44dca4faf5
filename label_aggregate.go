package lincheck

// Aggregate fuses two adjacent, same-thread events into a single atomic
// "total" label, returning (nil, false) when the pair does not aggregate.
// Aggregation is lossless: every observable value (location, value, mutex)
// carried by the parts survives in the fused label.
func Aggregate(a, b Label) (Label, bool) {
	switch x := a.(type) {
	case ReadAccessLabel:
		if x.Phase == Request {
			if y, ok := b.(ReadAccessLabel); ok && y.Phase == Response && y.Location == x.Location {
				return ReadAccessTotalLabel{
					baseLabel: baseLabel{kind: Response},
					Location:  y.Location,
					Value:     y.Value,
					KClass:    y.KClass,
					Exclusive: y.Exclusive,
				}, true
			}
		}
	case ReadAccessTotalLabel:
		if x.Exclusive {
			if y, ok := b.(WriteAccessLabel); ok && y.Exclusive && y.Location == x.Location {
				return ReadModifyWriteLabel{
					baseLabel: baseLabel{kind: Response},
					Location:  x.Location,
					OldValue:  x.Value,
					NewValue:  y.Value,
					KClass:    x.KClass,
				}, true
			}
		}
	case ThreadStartLabel:
		if x.Phase == Request {
			if y, ok := b.(ThreadStartLabel); ok && y.Phase == Response && y.ThreadID == x.ThreadID {
				return ThreadStartTotalLabel{
					baseLabel:    baseLabel{kind: Response},
					ThreadID:     y.ThreadID,
					IsMainThread: y.IsMainThread,
				}, true
			}
		}
	case ThreadJoinLabel:
		if x.Phase == Request {
			if y, ok := b.(ThreadJoinLabel); ok && y.Phase == Response && len(y.JoinThreadIDs) == 0 {
				return ThreadJoinTotalLabel{baseLabel: baseLabel{kind: Response, syncType: Barrier}}, true
			}
		}
	}
	return nil, false
}
