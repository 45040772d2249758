package hashver

import (
	"fmt"
	"strings"

	"github.com/albertocavalcante/hashver/pkg/maven"
)

// Tree drawing tokens, identical to Maven's standard dependency tree output.
const (
	tokenNode     = "+- "
	tokenLastNode = `\- `
	tokenFill     = "|  "
	tokenLastFill = "   "

	optionalMarker = " (optional) "
)

// OwnHashes maps module keys (groupId:artifactId:version) to own hashes.
type OwnHashes map[string]string

// Lookup returns the own hash of the reactor module identified by c.
func (o OwnHashes) Lookup(c maven.Coordinates) (string, bool) {
	h, ok := o[c.Key()]
	return h, ok
}

// NodeFormatter renders one dependency node as a single line of text.
type NodeFormatter func(node *maven.DependencyNode, own OwnHashes) (string, error)

// CanonicalFormatter renders reactor modules with their own hash in place of
// the version, so a module's version never feeds into a hash:
//
//	groupId:artifactId:type[:classifier]:<ownHash>[:scope][ (optional)]
//
// Other nodes keep their version. A snapshot outside the reactor fails with
// *SnapshotDependencyError unless allowSnapshots is set.
func CanonicalFormatter(allowSnapshots bool) NodeFormatter {
	return func(node *maven.DependencyNode, own OwnHashes) (string, error) {
		version, inReactor := own.Lookup(node.Coordinates)
		if !inReactor {
			if !allowSnapshots && node.IsSnapshot() {
				return "", &SnapshotDependencyError{Artifact: node.Coordinates}
			}
			version = node.Version
		}
		return formatNode(node, version), nil
	}
}

func formatNode(node *maven.DependencyNode, version string) string {
	c := node.Coordinates
	c.Version = version
	s := c.String()
	if node.Optional {
		s += optionalMarker
	}
	return s
}

// RenderTree serializes a dependency tree depth-first, one node per line,
// with the standard tree drawing prefixes. Lines end with "\n" on every
// platform.
func RenderTree(root *maven.DependencyNode, own OwnHashes, format NodeFormatter) (string, error) {
	var b strings.Builder
	if err := renderNode(&b, root, own, format, "", true, 0); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderNode(b *strings.Builder, n *maven.DependencyNode, own OwnHashes, format NodeFormatter, prefix string, last bool, depth int) error {
	if n == nil {
		return fmt.Errorf("%w: nil dependency node", ErrInternal)
	}

	text, err := format(n, own)
	if err != nil {
		return err
	}

	childPrefix := ""
	if depth > 0 {
		b.WriteString(prefix)
		if last {
			b.WriteString(tokenLastNode)
			childPrefix = prefix + tokenLastFill
		} else {
			b.WriteString(tokenNode)
			childPrefix = prefix + tokenFill
		}
	}
	b.WriteString(text)
	b.WriteByte('\n')

	for i, child := range n.Children {
		if err := renderNode(b, child, own, format, childPrefix, i == len(n.Children)-1, depth+1); err != nil {
			return err
		}
	}
	return nil
}
