// Package authz concentra las reglas de acceso del servicio: quién puede
// hacer qué sobre cada recurso, cómo se resuelve el dueño de un recurso y
// cómo se borra en cascada un pet o un usuario.
//
// Los handlers siguen siempre el mismo flujo:
//
//	principal := middleware.GetPrincipal(ctx)
//	err := authorizer.Authorize(ctx, principal, authz.ActionDelete, authz.ResourcePet, id)
//	// 404 si no existe, 403 si se deniega, y recién después la operación
package authz

type ResourceType string

const (
	ResourcePet           ResourceType = "pet"
	ResourceAppointment   ResourceType = "appointment"
	ResourceMedicalRecord ResourceType = "medical_record"
	ResourceReminder      ResourceType = "reminder"
	ResourceMedication    ResourceType = "medication"
	ResourceUser          ResourceType = "user"
	ResourceReport        ResourceType = "report"
)

// PetDependents son los recursos cuyo dueño es el dueño del pet referenciado.
// El orden es el orden de borrado en cascada.
var PetDependents = []ResourceType{
	ResourceAppointment,
	ResourceMedicalRecord,
	ResourceReminder,
	ResourceMedication,
}

func (r ResourceType) IsPetDependent() bool {
	for _, d := range PetDependents {
		if d == r {
			return true
		}
	}
	return false
}

type Action string

const (
	ActionList       Action = "list"
	ActionRead       Action = "read"
	ActionCreate     Action = "create"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
	ActionAssignRole Action = "assign_role"
)
