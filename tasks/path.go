package tasks

import "strings"

// Path addresses a child list in a tree. The empty path is the root list.
type Path []string

// ParsePath splits a "/"-separated path. "", "/" and "//" all denote the root
// list; leading, trailing and repeated separators are ignored.
func ParsePath(s string) Path {
	var p Path
	for _, seg := range strings.Split(s, "/") {
		if seg = strings.TrimSpace(seg); seg != "" {
			p = append(p, seg)
		}
	}
	return p
}

func (p Path) String() string {
	return "/" + strings.Join(p, "/")
}

// resolve walks p from roots and returns a pointer to the addressed child list
func resolve(roots *[]*Node, p Path) (*[]*Node, error) {
	list := roots
	for i, seg := range p {
		next := findIn(*list, seg)
		if next == nil {
			return nil, &PathNotFoundError{Segment: seg, Consumed: append([]string(nil), p[:i]...)}
		}
		list = &next.Children
	}
	return list, nil
}

func findIn(list []*Node, id string) *Node {
	for _, n := range list {
		if n.ID == id {
			return n
		}
	}
	return nil
}
