package forecast

import (
	"math"
	"math/rand"
	"sort"
)

// TreeConfig parameterizes the gradient-boosted tree adapter
type TreeConfig struct {
	Estimators   int
	MaxDepth     int
	LearningRate float64
	Subsample    float64
	ColSample    float64
	Seed         int64
	// MinTrainRows is the minimum number of complete feature rows required
	// before a fit is attempted
	MinTrainRows int
}

// DefaultTreeConfig returns the standard boosting configuration
func DefaultTreeConfig() TreeConfig {
	return TreeConfig{
		Estimators:   200,
		MaxDepth:     4,
		LearningRate: 0.05,
		Subsample:    0.8,
		ColSample:    0.8,
		Seed:         42,
		MinTrainRows: 20,
	}
}

// TreeModel fits gradient-boosted regression trees on engineered feature
// rows and forecasts recursively. The seed is fixed so that repeated runs
// over identical inputs are reproducible.
type TreeModel struct {
	config TreeConfig
}

// NewTreeModel creates a tree model adapter
func NewTreeModel(config TreeConfig) *TreeModel {
	if config.Estimators <= 0 {
		config.Estimators = 200
	}
	if config.MaxDepth <= 0 {
		config.MaxDepth = 4
	}
	if config.LearningRate <= 0 {
		config.LearningRate = 0.05
	}
	if config.MinTrainRows <= 0 {
		config.MinTrainRows = 20
	}
	return &TreeModel{config: config}
}

// Forecast trains on the frame's complete rows and predicts steps values
// recursively. Each synthetic step advances the calendar features by one
// week and feeds the previous prediction back as lag_1; all other lag and
// rolling features are carried forward from the last real row. Carrying
// them forward understates feature drift over long horizons; the bias is
// accepted to match the training-time feature semantics.
func (m *TreeModel) Forecast(frame *Frame, steps int) ModelForecast {
	if steps <= 0 {
		return Unavailable("no forecast steps requested")
	}

	trainRows := frame.CompleteRows()
	if len(trainRows) < m.config.MinTrainRows {
		return Unavailable("insufficient complete rows for tree fit")
	}

	features := make([][]float64, len(trainRows))
	targets := make([]float64, len(trainRows))
	for i, rowIdx := range trainRows {
		features[i] = frame.Rows[rowIdx]
		targets[i] = frame.Target[rowIdx]
	}

	booster := m.train(features, targets)

	lag1 := frame.ColumnIndex("lag_1")
	trendIdx := frame.ColumnIndex("trend")

	lastIdx := len(frame.Rows) - 1
	current := make([]float64, len(frame.Rows[lastIdx]))
	copy(current, frame.Rows[lastIdx])
	currentWeek := frame.Weeks[lastIdx]
	previous := frame.Target[lastIdx]

	points := make([]float64, 0, steps)
	for i := 0; i < steps; i++ {
		next := make([]float64, len(current))
		copy(next, current)

		currentWeek = currentWeek.AddDate(0, 0, 7)
		calendar := CalendarFeatures(currentWeek, int(current[trendIdx])+1)
		copy(next[:len(calendar)], calendar)
		next[lag1] = previous

		// NaN substitution happens only at prediction time, never during
		// training row selection
		input := make([]float64, len(next))
		for j, v := range next {
			if math.IsNaN(v) {
				input[j] = 0
			} else {
				input[j] = v
			}
		}

		predicted := math.Max(0, booster.predict(input))
		points = append(points, predicted)
		previous = predicted
		current = next
	}

	return ModelForecast{Available: true, Points: points}
}

// booster is a fitted gradient-boosted ensemble
type booster struct {
	base         float64
	learningRate float64
	trees        []*treeNode
}

func (b *booster) predict(features []float64) float64 {
	prediction := b.base
	for _, tree := range b.trees {
		prediction += b.learningRate * tree.predict(features)
	}
	return prediction
}

// train runs the boosting loop: each tree fits the current residuals on a
// row and column subsample
func (m *TreeModel) train(features [][]float64, targets []float64) *booster {
	rng := rand.New(rand.NewSource(m.config.Seed))
	n := len(targets)
	cols := len(features[0])

	base := mean(targets)
	predictions := make([]float64, n)
	for i := range predictions {
		predictions[i] = base
	}

	b := &booster{
		base:         base,
		learningRate: m.config.LearningRate,
		trees:        make([]*treeNode, 0, m.config.Estimators),
	}

	residuals := make([]float64, n)
	for t := 0; t < m.config.Estimators; t++ {
		for i := range residuals {
			residuals[i] = targets[i] - predictions[i]
		}

		rowSample := sampleIndices(rng, n, m.config.Subsample)
		colSample := sampleIndices(rng, cols, m.config.ColSample)

		tree := buildTree(features, residuals, rowSample, colSample, m.config.MaxDepth)
		b.trees = append(b.trees, tree)

		for i := range predictions {
			predictions[i] += m.config.LearningRate * tree.predict(features[i])
		}
	}
	return b
}

// treeNode is one node of a regression tree. Leaves carry the mean
// residual of the rows that reached them.
type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
}

func (t *treeNode) predict(features []float64) float64 {
	node := t
	for !node.leaf {
		if features[node.feature] <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// buildTree grows a regression tree greedily by variance reduction
func buildTree(features [][]float64, targets []float64, rows, cols []int, depth int) *treeNode {
	if depth == 0 || len(rows) < 2 {
		return &treeNode{leaf: true, value: meanAt(targets, rows)}
	}

	bestFeature, bestThreshold, bestScore := -1, 0.0, math.Inf(1)
	var bestLeft, bestRight []int

	for _, col := range cols {
		left, right, threshold, score, ok := bestSplit(features, targets, rows, col)
		if ok && score < bestScore {
			bestFeature, bestThreshold, bestScore = col, threshold, score
			bestLeft, bestRight = left, right
		}
	}

	if bestFeature < 0 {
		return &treeNode{leaf: true, value: meanAt(targets, rows)}
	}

	return &treeNode{
		feature:   bestFeature,
		threshold: bestThreshold,
		left:      buildTree(features, targets, bestLeft, cols, depth-1),
		right:     buildTree(features, targets, bestRight, cols, depth-1),
	}
}

// bestSplit scans candidate thresholds on one feature and returns the
// split minimizing the summed squared error of the two sides
func bestSplit(features [][]float64, targets []float64, rows []int, col int) (left, right []int, threshold, score float64, ok bool) {
	type pair struct {
		value  float64
		target float64
		row    int
	}
	pairs := make([]pair, 0, len(rows))
	for _, r := range rows {
		v := features[r][col]
		if math.IsNaN(v) {
			continue
		}
		pairs = append(pairs, pair{value: v, target: targets[r], row: r})
	}
	if len(pairs) < 2 {
		return nil, nil, 0, 0, false
	}

	sort.Slice(pairs, func(i, j int) bool { return pairs[i].value < pairs[j].value })

	totalSum, totalSq := 0.0, 0.0
	for _, p := range pairs {
		totalSum += p.target
		totalSq += p.target * p.target
	}

	leftSum := 0.0
	bestScore := math.Inf(1)
	bestCut := -1
	for i := 0; i < len(pairs)-1; i++ {
		leftSum += pairs[i].target
		if pairs[i].value == pairs[i+1].value {
			continue
		}
		nLeft := float64(i + 1)
		nRight := float64(len(pairs) - i - 1)
		rightSum := totalSum - leftSum
		// SSE = sum(y^2) - sum(y)^2/n per side; sum(y^2) is shared so the
		// score only needs the negative explained terms
		sse := totalSq - leftSum*leftSum/nLeft - rightSum*rightSum/nRight
		if sse < bestScore {
			bestScore = sse
			bestCut = i
		}
	}
	if bestCut < 0 {
		return nil, nil, 0, 0, false
	}

	threshold = (pairs[bestCut].value + pairs[bestCut+1].value) / 2
	for i, p := range pairs {
		if i <= bestCut {
			left = append(left, p.row)
		} else {
			right = append(right, p.row)
		}
	}
	return left, right, threshold, bestScore, true
}

// sampleIndices draws a fraction of indices without replacement. The
// returned order follows the permutation so sampling is deterministic for
// a given rng state.
func sampleIndices(rng *rand.Rand, n int, fraction float64) []int {
	if fraction <= 0 || fraction >= 1 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = i
		}
		return indices
	}
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	return rng.Perm(n)[:k]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func meanAt(xs []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	sum := 0.0
	for _, i := range idx {
		sum += xs[i]
	}
	return sum / float64(len(idx))
}
