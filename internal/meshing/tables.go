package meshing

import "github.com/go-gl/mathgl/mgl32"

// Cube topology used by the occlusion pass. Corners and edges are numbered
// bottom ring first (y=0), then top ring (y=1), counter-clockwise seen from above.

const (
	cornerCount = 8
	edgeCount   = 12
)

var cornerPositions = [cornerCount]mgl32.Vec3{
	{0, 0, 0},
	{1, 0, 0},
	{1, 0, 1},
	{0, 0, 1},
	{0, 1, 0},
	{1, 1, 0},
	{1, 1, 1},
	{0, 1, 1},
}

// Offset from a voxel to the diagonal neighbor sharing only that corner.
var cornerNormals = [cornerCount][3]int{
	{-1, -1, -1},
	{1, -1, -1},
	{1, -1, 1},
	{-1, -1, 1},
	{-1, 1, -1},
	{1, 1, -1},
	{1, 1, 1},
	{-1, 1, 1},
}

// Offset from a voxel to the neighbor sharing only that edge.
var edgeNormals = [edgeCount][3]int{
	{0, -1, -1},
	{1, -1, 0},
	{0, -1, 1},
	{-1, -1, 0},

	{-1, 0, -1},
	{1, 0, -1},
	{1, 0, 1},
	{-1, 0, 1},

	{0, 1, -1},
	{1, 1, 0},
	{0, 1, 1},
	{-1, 1, 0},
}

var edgeCorners = [edgeCount][2]int{
	{0, 1}, {1, 2}, {2, 3}, {3, 0},
	{0, 4}, {1, 5}, {2, 6}, {3, 7},
	{4, 5}, {5, 6}, {6, 7}, {7, 4},
}

// Corners and edges bounding each side, indexed by registry.Side.
var sideCorners = [6][4]int{
	{0, 3, 7, 4},
	{1, 2, 6, 5},
	{0, 1, 2, 3},
	{4, 5, 6, 7},
	{0, 1, 5, 4},
	{3, 2, 6, 7},
}

var sideEdges = [6][4]int{
	{3, 7, 11, 4},
	{1, 6, 9, 5},
	{0, 1, 2, 3},
	{8, 9, 10, 11},
	{0, 5, 8, 4},
	{2, 6, 10, 7},
}
