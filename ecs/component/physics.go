package component

import "github.com/milk9111/vrhands/physics"

// RigidBody binds an entity to its engine body.
type RigidBody struct {
	Body physics.Body
}

var RigidBodyComponent = NewComponent[RigidBody]()

// Colliders lists the colliders created for an entity.
type Colliders struct {
	IDs []physics.ColliderID
}

var CollidersComponent = NewComponent[Colliders]()

// HandColliders are the solid colliders of a hand, switched off while it
// holds something.
type HandColliders struct {
	IDs []physics.ColliderID
}

var HandCollidersComponent = NewComponent[HandColliders]()
