package signal

import "reflect"

// SenderLabel computes the identity label used for sender filtering.
// String senders label as themselves; everything else labels as its
// concrete type name, with pointers dereferenced.
func SenderLabel(sender any) string {
	if sender == nil {
		return ""
	}
	if s, ok := sender.(string); ok {
		return s
	}

	t := reflect.TypeOf(sender)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}

// matchesSender reports whether a declarative receiver's sender filter
// admits the sender. An empty filter admits every sender.
func matchesSender(filter string, sender any) bool {
	if filter == "" {
		return true
	}
	return SenderLabel(sender) == filter
}
