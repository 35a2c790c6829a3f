package matchresume

import (
	_ "embed"
	"fmt"

	"resume-matcher/internal/common/validation"
	"resume-matcher/pkg/registry"
)

//go:embed activity.json
var activityJSON []byte

var (
	activity    = mustActivity()
	inputSchema = mustInputSchema(activity)
)

// Activity returns the registry descriptor published for this worker.
func Activity() registry.Activity {
	return *activity
}

func mustActivity() *registry.Activity {
	reg, err := registry.Parse(activityJSON)
	if err != nil {
		panic(err)
	}
	a, ok := reg.Find(TaskType)
	if !ok {
		panic(fmt.Sprintf("activity.json has no %s activity", TaskType))
	}
	return a
}

func mustInputSchema(a *registry.Activity) *validation.Schema {
	schemaJSON, err := a.InputSchemaJSON()
	if err != nil {
		panic(err)
	}
	return validation.MustCompile(TaskType+"-input", schemaJSON)
}
