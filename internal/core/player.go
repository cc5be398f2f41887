package core

// MaxHealth is the health every player starts a duel with.
const MaxHealth = 100

// Vec3 is a position in world space.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quat is a unit quaternion orientation.
type Quat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// PlayerRecord is the replicated combat state of one room member.
// It is owned by the Registry; everything handed to clients is a copy.
type PlayerRecord struct {
	ConnID         string
	Position       Vec3
	Rotation       Quat
	WeaponPosition Vec3
	WeaponRotation Quat
	Health         int
	IsAttacking    bool
	IsBlocking     bool
}

// NewPlayerRecord constructs a fresh record at full health with
// identity orientation.
func NewPlayerRecord(connID string) *PlayerRecord {
	return &PlayerRecord{
		ConnID:         connID,
		Rotation:       Quat{W: 1},
		WeaponRotation: Quat{W: 1},
		Health:         MaxHealth,
	}
}

// PlayerUpdate carries the fields a client may overwrite on its own record.
type PlayerUpdate struct {
	Position       Vec3
	Rotation       Quat
	WeaponPosition Vec3
	WeaponRotation Quat
	IsAttacking    bool
	IsBlocking     bool
}

// Apply overwrites the movable fields in place.
func (p *PlayerRecord) Apply(u PlayerUpdate) {
	p.Position = u.Position
	p.Rotation = u.Rotation
	p.WeaponPosition = u.WeaponPosition
	p.WeaponRotation = u.WeaponRotation
	p.IsAttacking = u.IsAttacking
	p.IsBlocking = u.IsBlocking
}
