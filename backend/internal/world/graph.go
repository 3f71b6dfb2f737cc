package world

// Graph граф сцены с индексом по имени.
// Не потокобезопасен: им владеет цикл сессии.
type Graph struct {
	root   *Node
	byName map[string]*Node
}

// NewGraph создает пустой граф с корневой группой
func NewGraph() *Graph {
	root := NewNode("Scene", KindGroup)
	return &Graph{
		root:   root,
		byName: map[string]*Node{root.Name: root},
	}
}

// Root возвращает корневой узел
func (g *Graph) Root() *Node {
	return g.root
}

// Add прикрепляет поддерево к родителю (к корню, если parent == nil)
// и индексирует имена. При совпадении имен индекс хранит первый узел.
func (g *Graph) Add(parent, node *Node) {
	if parent == nil {
		parent = g.root
	}
	parent.Add(node)
	node.Traverse(func(n *Node) {
		if n.Name == "" {
			return
		}
		if _, exists := g.byName[n.Name]; !exists {
			g.byName[n.Name] = n
		}
	})
}

// Remove отцепляет поддерево и убирает его имена из индекса
func (g *Graph) Remove(node *Node) bool {
	if node == nil || node == g.root || node.parent == nil {
		return false
	}
	if !node.parent.remove(node) {
		return false
	}
	node.Traverse(func(n *Node) {
		if g.byName[n.Name] == n {
			delete(g.byName, n.Name)
		}
	})
	return true
}

// FindByName ищет узел по имени
func (g *Graph) FindByName(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Traverse возвращает узлы, для которых pred вернул true, в порядке обхода.
// pred == nil отбирает все узлы.
func (g *Graph) Traverse(pred func(*Node) bool) []*Node {
	var out []*Node
	g.root.Traverse(func(n *Node) {
		if pred == nil || pred(n) {
			out = append(out, n)
		}
	})
	return out
}

// Len возвращает число узлов в графе
func (g *Graph) Len() int {
	count := 0
	g.root.Traverse(func(*Node) { count++ })
	return count
}
