package data

// Level-format tile ids.
const (
	TilePaddle uint8 = 1
	TileBall   uint8 = 2

	MultiHit1 uint8 = 10 // one hit from simple stone
	MultiHit2 uint8 = 11
	MultiHit3 uint8 = 12
	MultiHit4 uint8 = 13 // four hits from simple stone

	SimpleBrick uint8 = 20

	GravityZero   uint8 = 21
	GravityTwo    uint8 = 22
	GravityTen    uint8 = 23
	GravityTwenty uint8 = 24
	GravityQueer  uint8 = 25

	PaddleShrink  uint8 = 30
	PaddleEnlarge uint8 = 32
	MerkabaBrick  uint8 = 36
	ExtraLife     uint8 = 41
	HazardBrick   uint8 = 42

	PaddleDestroyable uint8 = 57

	Indestructible       uint8 = 90
	HazardIndestructible uint8 = 91
)

// BrickCategory is the semantic view of a numeric brick id.
type BrickCategory uint8

const (
	CategoryStandard BrickCategory = iota + 1
	CategoryIndestructible
	CategoryMultiHit
	CategoryHazard
	CategoryPaddleDestroyable
	CategoryGravity
	CategoryMerkaba
	CategoryExtraLife
)

var categoryNames = map[BrickCategory]string{
	CategoryStandard:          "standard",
	CategoryIndestructible:    "indestructible",
	CategoryMultiHit:          "multi_hit",
	CategoryHazard:            "hazard",
	CategoryPaddleDestroyable: "paddle_destroyable",
	CategoryGravity:           "gravity",
	CategoryMerkaba:           "merkaba",
	CategoryExtraLife:         "extra_life",
}

func (c BrickCategory) String() string {
	if n, ok := categoryNames[c]; ok {
		return n
	}
	return "unknown"
}

// FromID classifies a brick id. Tile 0 (empty) and the paddle/ball spawn
// markers are not bricks. Unlisted non-zero ids are standard bricks so old
// level files that used 3 for a simple brick keep working.
func FromID(id uint8) (BrickCategory, bool) {
	switch {
	case id == 0 || id == TilePaddle || id == TileBall:
		return 0, false
	case IsMultiHit(id):
		return CategoryMultiHit, true
	case IsGravity(id):
		return CategoryGravity, true
	case id == Indestructible:
		return CategoryIndestructible, true
	case IsHazard(id):
		return CategoryHazard, true
	case IsPaddleDestroyable(id):
		return CategoryPaddleDestroyable, true
	case id == MerkabaBrick:
		return CategoryMerkaba, true
	case id == ExtraLife:
		return CategoryExtraLife, true
	default:
		return CategoryStandard, true
	}
}

func IsMultiHit(id uint8) bool {
	return id >= MultiHit1 && id <= MultiHit4
}

func IsHazard(id uint8) bool {
	return id == HazardBrick || id == HazardIndestructible
}

func IsPaddleDestroyable(id uint8) bool {
	return id == PaddleDestroyable
}

func IsGravity(id uint8) bool {
	return id >= GravityZero && id <= GravityQueer
}

// IsBallDestructible reports whether a ball contact destroys a brick holding
// this id (after any multi-hit step).
func IsBallDestructible(id uint8) bool {
	return id != Indestructible && id != HazardIndestructible && !IsPaddleDestroyable(id)
}

// CountsTowardsCompletion reports whether a brick must be cleared to finish
// the level.
func CountsTowardsCompletion(id uint8) bool {
	return id != Indestructible && id != HazardIndestructible
}

// NextMultiHitID returns the id after one hit: 13→12→11→10→20. ok is false
// for ids outside the chain.
func NextMultiHitID(id uint8) (uint8, bool) {
	if !IsMultiHit(id) {
		return id, false
	}
	if id == MultiHit1 {
		return SimpleBrick, true
	}
	return id - 1, true
}
