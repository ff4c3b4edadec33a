package setting

import (
	"fmt"
	"strconv"
	"strings"

	"sitemap-console/pkg/validate"
	"sitemap-console/pkg/xmltree"
)

// ItemKind selects the variant of a list item.
type ItemKind int

const (
	// ItemURL is a URL pattern with an enabled flag.
	ItemURL ItemKind = iota
	// ItemQueryField is a query parameter name kept in sitemap URLs.
	ItemQueryField
	// ItemReplacement is a find/replace pair with bracketed segments.
	ItemReplacement
)

// Item is one entry of a list setting. Deleted items stay in the list until
// the setting is saved so an accidental delete can be undone by re-adding.
type Item struct {
	kind     ItemKind
	value    string
	enabled  bool
	segments []string
	replace  string
	bad      bool
	deleted  bool
	owner    *ListValue
}

// Kind returns the item variant.
func (it *Item) Kind() ItemKind { return it.kind }

// Value returns the URL pattern, query field name or find value.
func (it *Item) Value() string { return it.value }

// Enabled reports whether a URL item is active. Other kinds are always enabled.
func (it *Item) Enabled() bool { return it.kind != ItemURL || it.enabled }

// List returns the list holding the item.
func (it *Item) List() *ListValue { return it.owner }

// Deleted reports whether the item was deleted and not yet pruned.
func (it *Item) Deleted() bool { return it.deleted }

// Segments returns the replacement values, one per bracket run of the find value.
func (it *Item) Segments() []string { return append([]string(nil), it.segments...) }

// Replace returns the replace value rebuilt from the find value's literal
// runs and the item's segments.
func (it *Item) Replace() string {
	if it.kind != ItemReplacement {
		return ""
	}
	if it.bad {
		return it.replace
	}
	lits, runs, _ := splitBrackets(it.value)
	if len(runs) == 0 {
		return it.replace
	}
	var b strings.Builder
	for i, lit := range lits {
		b.WriteString(lit)
		if i < len(it.segments) {
			b.WriteString("[" + it.segments[i] + "]")
		}
	}
	return b.String()
}

// setFind changes the find value and regenerates one segment per bracket
// run, keeping existing segment values by position.
func (it *Item) setFind(find string) error {
	_, runs, err := splitBrackets(find)
	if err != nil {
		return err
	}
	segs := make([]string, len(runs))
	copy(segs, it.segments)
	it.value = find
	it.segments = segs
	it.bad = false
	return nil
}

func (it *Item) encode() string {
	switch it.kind {
	case ItemURL:
		return it.value + "\t" + strconv.FormatBool(it.enabled)
	case ItemReplacement:
		return it.value + "\t" + it.Replace()
	default:
		return it.value
	}
}

func decodeItem(kind ItemKind, line string) *Item {
	it := &Item{kind: kind, enabled: true}
	switch kind {
	case ItemURL:
		value, flag, ok := strings.Cut(line, "\t")
		it.value = value
		if ok {
			it.enabled = parseBool(flag)
		}
	case ItemReplacement:
		find, replace, _ := strings.Cut(line, "\t")
		it.value = find
		it.setReplace(replace)
	default:
		it.value = line
	}
	return it
}

// setReplace fills segments from a stored replace value. A find/replace
// pair whose bracket runs or literal text do not line up is kept verbatim
// but marked bad.
func (it *Item) setReplace(replace string) {
	it.replace = replace
	flits, fruns, err := splitBrackets(it.value)
	if err != nil {
		it.bad = true
		return
	}
	if len(fruns) == 0 {
		it.segments = nil
		return
	}
	rlits, rruns, err := splitBrackets(replace)
	if err != nil || len(rruns) != len(fruns) {
		it.bad = true
		return
	}
	for i := range flits {
		if rlits[i] != flits[i] {
			it.bad = true
			return
		}
	}
	it.segments = rruns
}

// splitBrackets splits s into literal runs and bracketed runs. There is
// always one more literal run than bracketed runs.
func splitBrackets(s string) (lits, runs []string, err error) {
	var cur strings.Builder
	open := false
	for _, r := range s {
		switch {
		case r == '[' && open, r == ']' && !open:
			return nil, nil, fmt.Errorf("%w: unbalanced %q in %q", ErrMalformedField, r, s)
		case r == '[':
			lits = append(lits, cur.String())
			cur.Reset()
			open = true
		case r == ']':
			runs = append(runs, cur.String())
			cur.Reset()
			open = false
		default:
			cur.WriteRune(r)
		}
	}
	if open {
		return nil, nil, fmt.Errorf("%w: unclosed bracket in %q", ErrMalformedField, s)
	}
	lits = append(lits, cur.String())
	return lits, runs, nil
}

// ListValue holds the items of a list setting.
type ListValue struct {
	setting *Setting
	kind    ItemKind
	listTag string
	itemTag string
	field   *validate.Validator
	items   []*Item
}

func newListValue(s *Setting, spec listSpec) *ListValue {
	l := &ListValue{
		setting: s,
		kind:    spec.kind,
		listTag: spec.listTag,
		itemTag: spec.itemTag,
		field:   spec.field,
	}
	if l.listTag == "" {
		l.listTag = s.name
	}
	if l.itemTag == "" {
		switch l.kind {
		case ItemQueryField:
			l.itemTag = "QueryField"
		case ItemReplacement:
			l.itemTag = "UrlReplacement"
		default:
			l.itemTag = "Url"
		}
	}
	return l
}

// Kind returns the item variant held by the list.
func (l *ListValue) Kind() ItemKind { return l.kind }

// Items returns every item, deleted ones included.
func (l *ListValue) Items() []*Item { return append([]*Item(nil), l.items...) }

// Values prunes deleted items and returns the values of the rest.
func (l *ListValue) Values() []string {
	l.prune()
	out := make([]string, len(l.items))
	for i, it := range l.items {
		out[i] = it.value
	}
	return out
}

// prune drops deleted items. Once pruned, re-adding a value appends a new
// item instead of restoring the old one.
func (l *ListValue) prune() {
	kept := l.items[:0]
	for _, it := range l.items {
		if !it.deleted {
			kept = append(kept, it)
		}
	}
	for i := len(kept); i < len(l.items); i++ {
		l.items[i] = nil
	}
	l.items = kept
}

// Active returns the number of items that are neither deleted nor disabled.
func (l *ListValue) Active() int {
	n := 0
	for _, it := range l.items {
		if !it.deleted && it.Enabled() {
			n++
		}
	}
	return n
}

func (l *ListValue) find(value string) *Item {
	for _, it := range l.items {
		if it.value == value {
			return it
		}
	}
	return nil
}

func (l *ListValue) live() []*Item {
	var out []*Item
	for _, it := range l.items {
		if !it.deleted {
			out = append(out, it)
		}
	}
	return out
}

func (l *ListValue) encode() string {
	live := l.live()
	lines := make([]string, len(live))
	for i, it := range live {
		lines[i] = it.encode()
	}
	return strings.Join(lines, "\n")
}

func (l *ListValue) decode(v string) {
	l.items = nil
	if v == "" {
		return
	}
	for _, line := range strings.Split(v, "\n") {
		it := decodeItem(l.kind, line)
		it.owner = l
		l.items = append(l.items, it)
	}
}

// display returns one row per live item as shown in the list control.
func (l *ListValue) display() []string {
	live := l.live()
	rows := make([]string, len(live))
	for i, it := range live {
		switch {
		case it.kind == ItemReplacement:
			rows[i] = it.value + " => " + it.Replace()
		case !it.Enabled():
			rows[i] = it.value + " (disabled)"
		default:
			rows[i] = it.value
		}
	}
	return rows
}

func (l *ListValue) validate() bool {
	ok := true
	for _, it := range l.live() {
		if it.bad {
			ok = false
			continue
		}
		if l.field != nil && !l.field.Check(it.value) {
			ok = false
		}
		for _, seg := range it.segments {
			if strings.ContainsAny(seg, "[]") {
				ok = false
			}
		}
	}
	return ok
}

func (l *ListValue) readXML(node *xmltree.Node) (string, bool) {
	el := node.Child(l.listTag)
	if el == nil {
		return "", false
	}
	var lines []string
	for _, child := range el.Children(l.itemTag) {
		it := &Item{kind: l.kind, enabled: true}
		switch l.kind {
		case ItemURL:
			it.value = child.AttrOr("value", "")
			it.enabled = parseBool(child.AttrOr("enabled", "true"))
		case ItemQueryField:
			it.value = child.AttrOr("name", "")
		case ItemReplacement:
			it.value = child.AttrOr("find", "")
			it.setReplace(child.AttrOr("replace", ""))
		}
		lines = append(lines, it.encode())
	}
	return strings.Join(lines, "\n"), true
}

func (l *ListValue) writeXML(node *xmltree.Node) {
	node.RemoveChildren(l.listTag)
	el := node.AddChild(l.listTag)
	for _, it := range l.live() {
		child := el.AddChild(l.itemTag)
		switch it.kind {
		case ItemURL:
			child.SetAttr("value", it.value)
			child.SetAttr("enabled", strconv.FormatBool(it.enabled))
		case ItemQueryField:
			child.SetAttr("name", it.value)
		case ItemReplacement:
			child.SetAttr("find", it.value)
			child.SetAttr("replace", it.Replace())
		}
	}
}

func (s *Setting) editList() error {
	if s.list == nil {
		return fmt.Errorf("%w: %s", ErrNotList, s.name)
	}
	if s.Readonly() {
		s.ctx.rejected(s)
		return fmt.Errorf("%w: %s", ErrReadonly, s.name)
	}
	return nil
}

func (s *Setting) item(index int) (*Item, error) {
	if index < 0 || index >= len(s.list.items) {
		return nil, fmt.Errorf("%w: %s[%d]", ErrItemNotFound, s.name, index)
	}
	return s.list.items[index], nil
}

// AddItem appends value to a list setting. Re-adding a deleted item
// restores it; adding an active duplicate alerts and fails.
func (s *Setting) AddItem(value string) (*Item, error) {
	if err := s.editList(); err != nil {
		return nil, err
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("%w: %s: empty item", ErrInputRejected, s.name)
	}
	old := s.Value()
	it := s.list.find(value)
	switch {
	case it != nil && !it.deleted:
		s.ctx.prompter().Alert(MsgAlreadySpecified + value)
		return it, fmt.Errorf("%w: %s", ErrAlreadySpecified, value)
	case it != nil:
		it.deleted = false
	default:
		it = &Item{kind: s.list.kind, enabled: true, owner: s.list}
		if s.list.kind == ItemReplacement {
			if err := it.setFind(value); err != nil {
				return nil, err
			}
		} else {
			it.value = value
		}
		s.list.items = append(s.list.items, it)
	}
	return it, s.afterInput(old)
}

// DeleteItem marks the item at index deleted.
func (s *Setting) DeleteItem(index int) error {
	if err := s.editList(); err != nil {
		return err
	}
	it, err := s.item(index)
	if err != nil {
		return err
	}
	if it.deleted {
		return nil
	}
	old := s.Value()
	it.deleted = true
	return s.afterInput(old)
}

// SetItemEnabled enables or disables the URL item at index.
func (s *Setting) SetItemEnabled(index int, enabled bool) error {
	if err := s.editList(); err != nil {
		return err
	}
	it, err := s.item(index)
	if err != nil {
		return err
	}
	if it.kind != ItemURL || it.enabled == enabled {
		return nil
	}
	old := s.Value()
	it.enabled = enabled
	return s.afterInput(old)
}

// SetReplacementFind changes the find value of the replacement at index.
// Its replace segments are regenerated from the new bracket runs.
func (s *Setting) SetReplacementFind(index int, find string) error {
	if err := s.editList(); err != nil {
		return err
	}
	it, err := s.item(index)
	if err != nil {
		return err
	}
	if it.kind != ItemReplacement {
		return fmt.Errorf("%w: %s is not a replacement list", ErrNotList, s.name)
	}
	old := s.Value()
	if err := it.setFind(find); err != nil {
		return err
	}
	return s.afterInput(old)
}

// SetReplacementSegment sets one replace segment of the replacement at
// index. When the find value has no bracket runs, seg 0 sets the whole
// replace value.
func (s *Setting) SetReplacementSegment(index, seg int, value string) error {
	if err := s.editList(); err != nil {
		return err
	}
	it, err := s.item(index)
	if err != nil {
		return err
	}
	if it.kind != ItemReplacement {
		return fmt.Errorf("%w: %s is not a replacement list", ErrNotList, s.name)
	}
	old := s.Value()
	switch {
	case len(it.segments) == 0 && seg == 0:
		it.replace = value
	case seg >= 0 && seg < len(it.segments):
		it.segments[seg] = value
	default:
		return fmt.Errorf("%w: %s[%d] segment %d", ErrItemNotFound, s.name, index, seg)
	}
	return s.afterInput(old)
}
