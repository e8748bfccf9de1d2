package forest

// Option applies a configuration option to the Forest.
type Option func(*Forest)

// WithTreeCount sets the number of trees in the ensemble.
func WithTreeCount(count int) Option {
	return func(f *Forest) {
		if count > 0 {
			f.treeCount = count
		}
	}
}

// WithMaxDepth caps tree depth.
func WithMaxDepth(depth int) Option {
	return func(f *Forest) {
		if depth > 0 {
			f.maxDepth = depth
		}
	}
}

// WithMinLeafSize sets the minimum number of rows per leaf.
func WithMinLeafSize(size int) Option {
	return func(f *Forest) {
		if size > 0 {
			f.minLeafSize = size
		}
	}
}

// WithSeed sets the root seed of the per-tree generators.
func WithSeed(seed int64) Option {
	return func(f *Forest) {
		f.seed = seed
	}
}
