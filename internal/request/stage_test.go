package request_test

import (
	"testing"

	"github.com/LamineOzilJr/memoire-master2/internal/request"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func requestAtStage(approved ...request.Stage) *request.LeaveRequest {
	r := &request.LeaveRequest{
		ID:          uuid.New(),
		EmployeeID:  uuid.New(),
		ManagerID:   uuid.New(),
		LeaveTypeID: uuid.New(),
		StartDate:   day(2026, 3, 2),
		EndDate:     day(2026, 3, 6),
		TotalDays:   5,
		Version:     1,
	}
	for _, s := range request.Pipeline {
		r.SetStageRecord(s, request.StageRecord{Status: request.StatusPending})
	}
	for _, s := range approved {
		r.SetStageRecord(s, request.StageRecord{Status: request.StatusApproved})
	}
	return r
}

func TestActiveStage(t *testing.T) {
	t.Run("fresh request sits at the manager gate", func(t *testing.T) {
		stage, state := request.ActiveStage(requestAtStage())
		assert.Equal(t, request.StageManager, stage)
		assert.Equal(t, request.PipelineActive, state)
	})

	t.Run("each approval advances to the next gate", func(t *testing.T) {
		cases := []struct {
			approved []request.Stage
			want     request.Stage
		}{
			{[]request.Stage{request.StageManager}, request.StageRH},
			{[]request.Stage{request.StageManager, request.StageRH}, request.StageChefService},
			{[]request.Stage{request.StageManager, request.StageRH, request.StageChefService}, request.StageDG},
		}
		for _, tc := range cases {
			stage, state := request.ActiveStage(requestAtStage(tc.approved...))
			assert.Equal(t, tc.want, stage)
			assert.Equal(t, request.PipelineActive, state)
		}
	})

	t.Run("all four approvals complete the pipeline", func(t *testing.T) {
		stage, state := request.ActiveStage(requestAtStage(request.Pipeline...))
		assert.Equal(t, request.Stage(""), stage)
		assert.Equal(t, request.PipelineComplete, state)
	})

	t.Run("rejection halts the pipeline", func(t *testing.T) {
		r := requestAtStage(request.StageManager)
		r.SetStageRecord(request.StageRH, request.StageRecord{Status: request.StatusRejected})

		stage, state := request.ActiveStage(r)
		assert.Equal(t, request.Stage(""), stage)
		assert.Equal(t, request.PipelineRejected, state)
	})

	t.Run("info requested holds the current gate active", func(t *testing.T) {
		r := requestAtStage(request.StageManager)
		r.SetStageRecord(request.StageRH, request.StageRecord{Status: request.StatusInfoRequested})

		stage, state := request.ActiveStage(r)
		assert.Equal(t, request.StageRH, stage)
		assert.Equal(t, request.PipelineActive, state)
	})
}

func TestVisibleTo(t *testing.T) {
	t.Run("requester sees only their own requests", func(t *testing.T) {
		r := requestAtStage()
		assert.True(t, request.VisibleTo(r, request.RoleSalarie, r.EmployeeID.String()))
		assert.False(t, request.VisibleTo(r, request.RoleSalarie, uuid.New().String()))
	})

	t.Run("manager sees direct reports at their own gate", func(t *testing.T) {
		r := requestAtStage()
		assert.True(t, request.VisibleTo(r, request.RoleManager, r.ManagerID.String()))
		assert.False(t, request.VisibleTo(r, request.RoleManager, uuid.New().String()))
	})

	t.Run("manager keeps rejected requests, loses forwarded ones", func(t *testing.T) {
		rejected := requestAtStage()
		rejected.SetStageRecord(request.StageManager, request.StageRecord{Status: request.StatusRejected})
		assert.True(t, request.VisibleTo(rejected, request.RoleManager, rejected.ManagerID.String()))

		forwarded := requestAtStage(request.StageManager)
		assert.False(t, request.VisibleTo(forwarded, request.RoleManager, forwarded.ManagerID.String()))
	})

	t.Run("downstream roles see nothing before their turn", func(t *testing.T) {
		r := requestAtStage()
		assert.False(t, request.VisibleTo(r, request.RoleServiceRH, uuid.New().String()))
		assert.False(t, request.VisibleTo(r, request.RoleChefService, uuid.New().String()))
		assert.False(t, request.VisibleTo(r, request.RoleDG, uuid.New().String()))
	})

	t.Run("each downstream role sees the request once the previous gate approved", func(t *testing.T) {
		actor := uuid.New().String()
		assert.True(t, request.VisibleTo(requestAtStage(request.StageManager), request.RoleServiceRH, actor))
		assert.True(t, request.VisibleTo(requestAtStage(request.StageManager, request.StageRH), request.RoleChefService, actor))
		assert.True(t, request.VisibleTo(requestAtStage(request.StageManager, request.StageRH, request.StageChefService), request.RoleDG, actor))
	})

	t.Run("rejection downstream hides the request from later gates", func(t *testing.T) {
		r := requestAtStage(request.StageManager)
		r.SetStageRecord(request.StageRH, request.StageRecord{Status: request.StatusRejected})
		assert.False(t, request.VisibleTo(r, request.RoleChefService, uuid.New().String()))
		assert.False(t, request.VisibleTo(r, request.RoleDG, uuid.New().String()))
	})

	t.Run("admin sees everything", func(t *testing.T) {
		assert.True(t, request.VisibleTo(requestAtStage(), request.RoleAdmin, uuid.New().String()))
	})
}

func TestActionable(t *testing.T) {
	t.Run("only the active stage's role can act", func(t *testing.T) {
		r := requestAtStage(request.StageManager)
		assert.True(t, request.Actionable(r, request.RoleServiceRH, uuid.New().String()))
		assert.False(t, request.Actionable(r, request.RoleManager, r.ManagerID.String()))
		assert.False(t, request.Actionable(r, request.RoleChefService, uuid.New().String()))
	})

	t.Run("requester is never actionable", func(t *testing.T) {
		r := requestAtStage()
		assert.False(t, request.Actionable(r, request.RoleSalarie, r.EmployeeID.String()))
	})

	t.Run("complete pipeline has nothing to act on", func(t *testing.T) {
		r := requestAtStage(request.Pipeline...)
		assert.False(t, request.Actionable(r, request.RoleDG, uuid.New().String()))
	})
}

func TestStageRoleMapping(t *testing.T) {
	assert.Equal(t, request.RoleManager, request.RoleForStage(request.StageManager))
	assert.Equal(t, request.RoleServiceRH, request.RoleForStage(request.StageRH))
	assert.Equal(t, request.RoleChefService, request.RoleForStage(request.StageChefService))
	assert.Equal(t, request.RoleDG, request.RoleForStage(request.StageDG))

	stage, ok := request.StageForRole(request.RoleServiceRH)
	assert.True(t, ok)
	assert.Equal(t, request.StageRH, stage)

	_, ok = request.StageForRole(request.RoleSalarie)
	assert.False(t, ok)
	_, ok = request.StageForRole(request.RoleAdmin)
	assert.False(t, ok)

	_, ok = request.ParseStage("PAYROLL")
	assert.False(t, ok)
}
