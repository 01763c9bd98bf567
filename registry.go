package watcher

// registry maps watch descriptors to the path they were registered for. It is
// owned by one watch loop and never shared, so there's no locking.
type registry struct {
	paths map[int]string // Map of watched paths (key: watch descriptor)
}

const registryReserve = 256

func newRegistry() *registry {
	return &registry{paths: make(map[int]string, registryReserve)}
}

// add records wd as watching path. The kernel returns the same wd for the same
// inode, so re-adding a directory through another path just renames it.
func (r *registry) add(wd int, path string) { r.paths[wd] = path }

// addNew is add that keeps an existing entry; it reports if path was stored.
func (r *registry) addNew(wd int, path string) bool {
	if _, ok := r.paths[wd]; ok {
		return false
	}
	r.paths[wd] = path
	return true
}

func (r *registry) lookup(wd int) (string, bool) {
	p, ok := r.paths[wd]
	return p, ok
}

func (r *registry) remove(wd int) { delete(r.paths, wd) }

func (r *registry) len() int { return len(r.paths) }
