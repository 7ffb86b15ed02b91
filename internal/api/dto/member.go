package dto

import (
	"github.com/suicidekings/carclub/internal/domain/member"
	"github.com/suicidekings/carclub/internal/types"
)

type MemberResponse struct {
	*member.Member
}

// ListMembersResponse represents the response for listing members
type ListMembersResponse = types.ListResponse[*MemberResponse]

func NewMemberResponse(m *member.Member) *MemberResponse {
	return &MemberResponse{Member: m}
}
