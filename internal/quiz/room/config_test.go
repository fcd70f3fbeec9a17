package room

import (
	"encoding/json"
	"testing"
)

func TestRoundDefinitionDeprecatedAlias(t *testing.T) {
	t.Parallel()

	var def RoundDefinition
	if err := json.Unmarshal([]byte(`{"roundType":"generalTrivia","pointslostperunanswered":3}`), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if def.PointsLostPerUnanswered != 3 {
		t.Errorf("alias not honored, got %d", def.PointsLostPerUnanswered)
	}

	// canonical field wins over the alias
	def = RoundDefinition{}
	if err := json.Unmarshal([]byte(`{"pointsLostPerUnanswered":5,"pointslostperunanswered":3}`), &def); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if def.PointsLostPerUnanswered != 5 {
		t.Errorf("canonical field must win, got %d", def.PointsLostPerUnanswered)
	}
}

func TestExtraIDTargeted(t *testing.T) {
	t.Parallel()

	if !ExtraFreezeOutTeam.Targeted() || !ExtraRobPoints.Targeted() {
		t.Error("freeze and rob act on a target")
	}
	if ExtraBuyHint.Targeted() || ExtraRestorePoints.Targeted() {
		t.Error("hint and restore act on the user")
	}
}
