package world

// Join creates the representation of a participant.
func (w *World) Join(id, name string) error {
	if w.Exists(id) {
		return w.Update(id, func(e Entity) Entity {
			e.Title = name
			return e
		})
	}
	return w.Create(Entity{
		ID:    id,
		Kind:  KindParticipant,
		Owner: id,
		Title: name,
	})
}

// Leave destroys the participant and every entity exclusively owned by it. Interaction flags it
// held on other entities are cleared.
func (w *World) Leave(id string) error {
	for _, e := range w.All() {
		if e.GrabbedBy != id && e.SelectedBy != id && e.HoveredBy != id {
			continue
		}
		err := w.Update(e.ID, func(e Entity) Entity {
			if e.GrabbedBy == id {
				e.GrabbedBy = ""
			}
			if e.SelectedBy == id {
				e.SelectedBy = ""
			}
			if e.HoveredBy == id {
				e.HoveredBy = ""
			}
			return e
		})
		if err != nil {
			return err
		}
	}
	for _, e := range w.ByOwner(id) {
		if e.ID == id {
			continue
		}
		if err := w.Destroy(e.ID); err != nil && !IsNotFound(err) {
			return err
		}
	}
	return w.Destroy(id)
}

func (w *World) SetGrabbed(entity, owner string, value bool) error {
	return w.Update(entity, func(e Entity) Entity {
		e.GrabbedBy = flag(e.GrabbedBy, owner, value)
		return e
	})
}

func (w *World) SetSelected(entity, owner string, value bool) error {
	return w.Update(entity, func(e Entity) Entity {
		e.SelectedBy = flag(e.SelectedBy, owner, value)
		return e
	})
}

func (w *World) SetHovered(entity, owner string, value bool) error {
	return w.Update(entity, func(e Entity) Entity {
		e.HoveredBy = flag(e.HoveredBy, owner, value)
		return e
	})
}

func flag(current, owner string, value bool) string {
	if value {
		return owner
	}
	if current == owner {
		return ""
	}
	return current
}
