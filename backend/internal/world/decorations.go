package world

// BodyDecorations управляет метками, подсветкой и орбитами тел
type BodyDecorations struct {
	scene *Scene
}

// BodyDecorations возвращает приемник декораций тел
func (s *Scene) BodyDecorations() BodyDecorations {
	return BodyDecorations{scene: s}
}

func (d BodyDecorations) Has(id string) bool {
	_, ok := d.scene.Bodies[id]
	return ok
}

func (d BodyDecorations) IDs() []string {
	return d.scene.BodyIDs()
}

func (d BodyDecorations) SetLabelVisible(id string, visible bool) {
	if n, ok := d.scene.Bodies[id]; ok {
		n.Label.Visible = visible
	}
}

func (d BodyDecorations) SetGlowVisible(id string, visible bool) {
	if n, ok := d.scene.Bodies[id]; ok {
		n.Glow.Visible = visible
	}
}

// SetLinesVisible для тела управляет линией орбиты
func (d BodyDecorations) SetLinesVisible(id string, visible bool) {
	if n, ok := d.scene.Bodies[id]; ok && n.Orbit != nil {
		n.Orbit.Visible = visible
	}
}

func (d BodyDecorations) SetEntityVisible(id string, visible bool) {
	if n, ok := d.scene.Bodies[id]; ok {
		n.Group.Visible = visible
	}
}

// ConstellationDecorations управляет метками, подсветкой и линиями созвездий
type ConstellationDecorations struct {
	scene *Scene
}

// ConstellationDecorations возвращает приемник декораций созвездий
func (s *Scene) ConstellationDecorations() ConstellationDecorations {
	return ConstellationDecorations{scene: s}
}

func (d ConstellationDecorations) Has(id string) bool {
	_, ok := d.scene.Constellations[id]
	return ok
}

func (d ConstellationDecorations) IDs() []string {
	return d.scene.ConstellationNames()
}

func (d ConstellationDecorations) SetLabelVisible(id string, visible bool) {
	if n, ok := d.scene.Constellations[id]; ok {
		n.Label.Visible = visible
	}
}

func (d ConstellationDecorations) SetGlowVisible(id string, visible bool) {
	if n, ok := d.scene.Constellations[id]; ok {
		n.Glow.Visible = visible
	}
}

func (d ConstellationDecorations) SetLinesVisible(id string, visible bool) {
	if n, ok := d.scene.Constellations[id]; ok {
		n.Lines.Visible = visible
	}
}

func (d ConstellationDecorations) SetEntityVisible(id string, visible bool) {
	if n, ok := d.scene.Constellations[id]; ok {
		n.Group.Visible = visible
	}
}
