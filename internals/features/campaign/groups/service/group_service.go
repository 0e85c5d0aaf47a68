package service

import (
	"crypto/rand"
	"errors"
	"log"
	"math/big"

	"gorm.io/gorm"

	contribModel "ilika_backend/internals/features/campaign/contributions/model"
	"ilika_backend/internals/features/campaign/groups/dto"
	"ilika_backend/internals/features/campaign/groups/model"
	helper "ilika_backend/internals/helpers"
)

var (
	ErrGroupNotFound = errors.New("group not found")
	ErrGroupFull     = errors.New("group is already full")
)

type GroupService struct {
	DB *gorm.DB
}

func NewGroupService(db *gorm.DB) *GroupService {
	return &GroupService{DB: db}
}

// CreateGroup opens a 4-slot campaign with the initiator in slot 1 and
// records the initiator's own slot contribution as Pending.
func (s *GroupService) CreateGroup(req *dto.CreateGroupRequest) (*model.Group, *contribModel.Contribution, error) {
	g := model.Group{
		InitiatorName:  req.InitiatorName,
		InitiatorEmail: req.InitiatorEmail,
		InitiatorPhone: req.InitiatorPhone,
		TotalSlots:     model.DefaultTotalSlots,
		FilledSlots:    1,
		Status:         model.GroupStatusOpen,
	}

	// Short ids collide occasionally; retry with a fresh one.
	var err error
	for attempt := 0; attempt < 5; attempt++ {
		g.GroupID = shortGroupID()
		g.Slug = helper.GroupSlug(req.InitiatorName, g.GroupID)
		err = s.DB.Create(&g).Error
		if err == nil {
			break
		}
		log.Printf("[GROUP] create attempt with id %d failed: %v", g.GroupID, err)
	}
	if err != nil {
		return nil, nil, err
	}

	contribution, err := s.createSlotContribution(&g, req.InitiatorName, req.InitiatorEmail, req.InitiatorPhone, req.ReferredBy)
	if err != nil {
		return nil, nil, err
	}
	return &g, contribution, nil
}

// GetBySlug returns a group with its member slots.
func (s *GroupService) GetBySlug(slug string) (*model.Group, []dto.GroupMember, error) {
	var g model.Group
	err := s.DB.Where("slug = ?", slug).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	var rows []contribModel.Contribution
	if err := s.DB.Where("group_id = ?", g.GroupID).Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, nil, err
	}
	members := make([]dto.GroupMember, 0, len(rows))
	for i := range rows {
		members = append(members, dto.GroupMember{
			DonorName:     rows[i].DonorName,
			Amount:        rows[i].Amount,
			PaymentStatus: rows[i].PaymentStatus,
			JoinedAt:      rows[i].CreatedAt,
		})
	}
	return &g, members, nil
}

// Join claims a slot with a single conditional update so two concurrent
// joins can never overfill the group; status is recomputed in the same
// statement. Zero affected rows means the group was full (or missing).
func (s *GroupService) Join(groupID int, req *dto.JoinGroupRequest) (*model.Group, *contribModel.Contribution, error) {
	res := s.DB.Model(&model.Group{}).
		Where("group_id = ? AND filled_slots < total_slots", groupID).
		Updates(map[string]interface{}{
			"filled_slots": gorm.Expr("filled_slots + 1"),
			"status":       gorm.Expr("CASE WHEN filled_slots + 1 >= total_slots THEN 'Complete' ELSE 'Open' END"),
		})
	if res.Error != nil {
		return nil, nil, res.Error
	}
	if res.RowsAffected == 0 {
		var g model.Group
		err := s.DB.Where("group_id = ?", groupID).First(&g).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrGroupNotFound
		}
		if err != nil {
			return nil, nil, err
		}
		return nil, nil, ErrGroupFull
	}

	var g model.Group
	if err := s.DB.Where("group_id = ?", groupID).First(&g).Error; err != nil {
		return nil, nil, err
	}

	contribution, err := s.createSlotContribution(&g, req.DonorName, req.Email, req.Phone, nil)
	if err != nil {
		// Give the claimed slot back so the group doesn't strand a seat.
		s.releaseSlot(groupID)
		return nil, nil, err
	}
	return &g, contribution, nil
}

// Unjoin removes a member whose payment never completed: the Pending
// contribution row is deleted and the slot released.
func (s *GroupService) Unjoin(groupID int, email string) (*model.Group, error) {
	var g model.Group
	err := s.DB.Where("group_id = ?", groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}

	res := s.DB.Where("group_id = ? AND email = ? AND payment_status = ?",
		groupID, email, contribModel.PaymentStatusPending).
		Delete(&contribModel.Contribution{})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, errors.New("no pending contribution for this member")
	}

	s.releaseSlot(groupID)

	if err := s.DB.Where("group_id = ?", groupID).First(&g).Error; err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GroupService) releaseSlot(groupID int) {
	err := s.DB.Model(&model.Group{}).
		Where("group_id = ? AND filled_slots > 0", groupID).
		Updates(map[string]interface{}{
			"filled_slots": gorm.Expr("filled_slots - 1"),
			"status":       model.GroupStatusOpen,
		}).Error
	if err != nil {
		log.Printf("[GROUP] slot release for %d failed: %v", groupID, err)
	}
}

func (s *GroupService) createSlotContribution(g *model.Group, name, email string, phone, referredBy *string) (*contribModel.Contribution, error) {
	referral := helper.GenerateReferralCode(name)
	groupID := g.GroupID
	c := contribModel.Contribution{
		DonorName:         name,
		Email:             email,
		Phone:             phone,
		Type:              contribModel.ContributionTypeGroup,
		DonorType:         contribModel.DonorTypeIndividual,
		Amount:            contribModel.AmountGroupSlot,
		PaymentPreference: contribModel.PreferenceMonthly,
		PaymentStatus:     contribModel.PaymentStatusPending,
		ReferralCode:      &referral,
		ReferredBy:        referredBy,
		GroupID:           &groupID,
	}
	if err := s.DB.Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// shortGroupID returns a 4-digit id, the tail of the public slug.
func shortGroupID() int {
	n, err := rand.Int(rand.Reader, big.NewInt(9000))
	if err != nil {
		return 1000
	}
	return int(n.Int64()) + 1000
}
