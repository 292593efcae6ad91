package pg

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	dbt "flatfin/db/db"
	"flatfin/ledger"
)

// GORMLedgerDBWrapper is a GORM-based PostgreSQL implementation of
// dbt.LedgerDBWrapper.
type GORMLedgerDBWrapper struct {
	db *gorm.DB
}

// NewGORMLedgerDBWrapper creates and returns a new instance of GORMLedgerDBWrapper.
func NewGORMLedgerDBWrapper(db *gorm.DB) dbt.LedgerDBWrapper {
	return &GORMLedgerDBWrapper{
		db: db,
	}
}

// storeFailure wraps backend errors that are neither "missing row" nor a
// constraint violation, so callers can detect the retryable class.
func storeFailure(op string, err error) error {
	return fmt.Errorf("%s: %w: %s", op, dbt.ErrStoreUnavailable, err)
}

func isDuplicateKey(err error) bool {
	return strings.Contains(err.Error(), "duplicate key value violates unique constraint")
}

func expenseToModel(e *dbt.Expense) ExpenseModel {
	return ExpenseModel{
		ID:          e.ID,
		Name:        e.Name,
		AmountCents: int64(e.Amount),
		Category:    int(e.Category),
		Kind:        int(e.Kind),
		Date:        e.Date,
		CreatedBy:   e.CreatedBy,
		FlatID:      e.FlatID,
		SplitMethod: int(e.SplitMethod),
	}
}

func expenseFromModel(m ExpenseModel, splits []ExpenseSplitModel) dbt.Expense {
	expense := dbt.Expense{
		ID:          m.ID,
		Name:        m.Name,
		Amount:      ledger.Money(m.AmountCents),
		Category:    ledger.Category(m.Category),
		Kind:        dbt.ExpenseKind(m.Kind),
		Date:        m.Date,
		CreatedBy:   m.CreatedBy,
		FlatID:      m.FlatID,
		SplitMethod: dbt.SplitMethod(m.SplitMethod),
	}
	if len(splits) > 0 {
		expense.Splits = make(map[uuid.UUID]ledger.Money, len(splits))
		for _, s := range splits {
			expense.Splits[s.MemberID] = ledger.Money(s.AmountCents)
		}
	}
	return expense
}

func flatToModel(f *dbt.Flat) FlatModel {
	return FlatModel{
		ID:                  f.ID,
		Name:                f.Name,
		JoinCode:            f.JoinCode,
		CreatedBy:           f.CreatedBy,
		RentCents:           int64(f.FixedCosts.Rent),
		RentDueDay:          f.FixedCosts.RentDueDay,
		ElectricityCapCents: int64(f.FixedCosts.ElectricityCap),
		InternetBillCents:   int64(f.FixedCosts.InternetBill),
		CreatedAt:           f.CreatedAt,
	}
}

func flatFromModel(m FlatModel, members []FlatMemberModel) dbt.Flat {
	flat := dbt.Flat{
		ID:        m.ID,
		Name:      m.Name,
		JoinCode:  m.JoinCode,
		CreatedBy: m.CreatedBy,
		Members:   make([]uuid.UUID, 0, len(members)),
		FixedCosts: dbt.FixedCosts{
			Rent:           ledger.Money(m.RentCents),
			RentDueDay:     m.RentDueDay,
			ElectricityCap: ledger.Money(m.ElectricityCapCents),
			InternetBill:   ledger.Money(m.InternetBillCents),
		},
		CreatedAt: m.CreatedAt,
	}
	for _, member := range members {
		flat.Members = append(flat.Members, member.MemberID)
	}
	return flat
}

func userToModel(u *dbt.User) UserModel {
	return UserModel{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		BankInfo:  u.BankInfo,
		FlatID:    u.FlatID,
		CreatedAt: u.CreatedAt,
	}
}

func userFromModel(m UserModel) dbt.User {
	return dbt.User{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		AvatarURL: m.AvatarURL,
		BankInfo:  m.BankInfo,
		FlatID:    m.FlatID,
		CreatedAt: m.CreatedAt,
	}
}

func reminderToModel(r *dbt.Reminder) ReminderModel {
	return ReminderModel{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Type:        int(r.Type),
		AmountCents: int64(r.Amount),
		DueDate:     r.DueDate,
		Status:      int(r.Status),
		UserID:      r.UserID,
		FlatID:      r.FlatID,
		RecurDays:   r.RecurDays,
	}
}

func reminderFromModel(m ReminderModel) dbt.Reminder {
	return dbt.Reminder{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Type:        dbt.ReminderType(m.Type),
		Amount:      ledger.Money(m.AmountCents),
		DueDate:     m.DueDate,
		Status:      dbt.ReminderStatus(m.Status),
		UserID:      m.UserID,
		FlatID:      m.FlatID,
		RecurDays:   m.RecurDays,
	}
}

func budgetToModel(b *dbt.Budget) BudgetModel {
	model := BudgetModel{
		ID:         b.ID,
		UserID:     b.UserID,
		LimitCents: int64(b.Limit),
		Period:     int(b.Period),
		StartDate:  b.StartDate,
		EndDate:    b.EndDate,
	}
	if b.Category != nil {
		category := int(*b.Category)
		model.Category = &category
	}
	return model
}

func budgetFromModel(m BudgetModel) dbt.Budget {
	budget := dbt.Budget{
		ID:        m.ID,
		UserID:    m.UserID,
		Limit:     ledger.Money(m.LimitCents),
		Period:    ledger.BudgetPeriod(m.Period),
		StartDate: m.StartDate,
		EndDate:   m.EndDate,
	}
	if m.Category != nil {
		category := ledger.Category(*m.Category)
		budget.Category = &category
	}
	return budget
}

// PutExpense inserts or replaces an expense and its splits in one transaction.
func (pgdb *GORMLedgerDBWrapper) PutExpense(expense *dbt.Expense) error {
	model := expenseToModel(expense)
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model); result.Error != nil {
			return result.Error
		}
		if result := tx.Where("expense_id = ?", expense.ID).Delete(&ExpenseSplitModel{}); result.Error != nil {
			return result.Error
		}
		if len(expense.Splits) == 0 {
			return nil
		}
		splitModels := make([]ExpenseSplitModel, 0, len(expense.Splits))
		for member, share := range expense.Splits {
			splitModels = append(splitModels, ExpenseSplitModel{
				ExpenseID:   expense.ID,
				MemberID:    member,
				AmountCents: int64(share),
			})
		}
		if result := tx.Create(&splitModels); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		return storeFailure(fmt.Sprintf("failed to put expense %s", expense.ID), err)
	}
	return nil
}

// GetExpense retrieves an expense and its splits by id.
func (pgdb *GORMLedgerDBWrapper) GetExpense(id uuid.UUID) (*dbt.Expense, error) {
	var model ExpenseModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense with ID %s: %w", id, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get expense %s", id), result.Error)
	}

	var splits []ExpenseSplitModel
	if result := pgdb.db.Where("expense_id = ?", id).Find(&splits); result.Error != nil {
		return nil, storeFailure(fmt.Sprintf("failed to get splits for expense %s", id), result.Error)
	}

	expense := expenseFromModel(model, splits)
	return &expense, nil
}

// DeleteExpense deletes an expense and its splits; an unknown id is an error.
func (pgdb *GORMLedgerDBWrapper) DeleteExpense(id uuid.UUID) error {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&ExpenseModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("expense with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
		}
		if result := tx.Where("expense_id = ?", id).Delete(&ExpenseSplitModel{}); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, dbt.ErrNotFound) {
			return err
		}
		return storeFailure(fmt.Sprintf("failed to delete expense %s", id), err)
	}
	return nil
}

// QueryExpenses returns the expenses matching the filter, newest first.
func (pgdb *GORMLedgerDBWrapper) QueryExpenses(ctx context.Context, filter dbt.ExpenseFilter) ([]dbt.Expense, error) {
	query := pgdb.db.WithContext(ctx).Model(&ExpenseModel{})
	if filter.CreatedBy != uuid.Nil {
		query = query.Where("created_by = ?", filter.CreatedBy)
	}
	if filter.FlatID != uuid.Nil {
		query = query.Where("flat_id = ?", filter.FlatID)
	}
	if filter.Category != nil {
		query = query.Where("category = ?", int(*filter.Category))
	}
	if filter.Kind != nil {
		query = query.Where("kind = ?", int(*filter.Kind))
	}
	if filter.Start != nil {
		query = query.Where("date >= ?", *filter.Start)
	}
	if filter.End != nil {
		query = query.Where("date < ?", *filter.End)
	}

	var models []ExpenseModel
	if result := query.Order("date DESC, id").Find(&models); result.Error != nil {
		return nil, storeFailure("failed to query expenses", result.Error)
	}

	expenses := make([]dbt.Expense, 0, len(models))
	if len(models) == 0 {
		return expenses, nil
	}

	ids := make([]uuid.UUID, 0, len(models))
	for _, m := range models {
		ids = append(ids, m.ID)
	}
	var splitModels []ExpenseSplitModel
	if result := pgdb.db.WithContext(ctx).Where("expense_id IN ?", ids).Find(&splitModels); result.Error != nil {
		return nil, storeFailure("failed to query expense splits", result.Error)
	}
	splitsByExpense := make(map[uuid.UUID][]ExpenseSplitModel)
	for _, s := range splitModels {
		splitsByExpense[s.ExpenseID] = append(splitsByExpense[s.ExpenseID], s)
	}

	for _, m := range models {
		expenses = append(expenses, expenseFromModel(m, splitsByExpense[m.ID]))
	}
	return expenses, nil
}

// CreateFlat creates a flat and its initial member rows.
func (pgdb *GORMLedgerDBWrapper) CreateFlat(flat *dbt.Flat) error {
	model := flatToModel(flat)
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		if result := tx.Create(&model); result.Error != nil {
			return result.Error
		}
		for _, member := range flat.Members {
			memberModel := FlatMemberModel{FlatID: flat.ID, MemberID: member}
			if result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberModel); result.Error != nil {
				return result.Error
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("flat with ID %s or join code %s already exists: %w", flat.ID, flat.JoinCode, err)
		}
		return storeFailure(fmt.Sprintf("failed to create flat %s", flat.ID), err)
	}
	return nil
}

func (pgdb *GORMLedgerDBWrapper) loadFlat(model FlatModel) (*dbt.Flat, error) {
	var members []FlatMemberModel
	if result := pgdb.db.Where("flat_id = ?", model.ID).Order("created_at").Find(&members); result.Error != nil {
		return nil, storeFailure(fmt.Sprintf("failed to get members for flat %s", model.ID), result.Error)
	}
	flat := flatFromModel(model, members)
	return &flat, nil
}

// GetFlat retrieves a flat and its member set by id.
func (pgdb *GORMLedgerDBWrapper) GetFlat(id uuid.UUID) (*dbt.Flat, error) {
	var model FlatModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get flat %s", id), result.Error)
	}
	return pgdb.loadFlat(model)
}

// GetFlatByCode retrieves a flat by its join code.
func (pgdb *GORMLedgerDBWrapper) GetFlatByCode(code string) (*dbt.Flat, error) {
	var model FlatModel
	result := pgdb.db.First(&model, "join_code = ?", code)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("flat with join code %s: %w", code, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get flat by code %s", code), result.Error)
	}
	return pgdb.loadFlat(model)
}

// UpdateFlat updates the flat's settings; membership is managed separately.
func (pgdb *GORMLedgerDBWrapper) UpdateFlat(flat *dbt.Flat) error {
	model := flatToModel(flat)
	result := pgdb.db.Model(&model).
		Select("name", "join_code", "rent_cents", "rent_due_day", "electricity_cap_cents", "internet_bill_cents").
		Where("id = ?", flat.ID).Updates(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("join code %s already exists: %w", flat.JoinCode, result.Error)
		}
		return storeFailure(fmt.Sprintf("failed to update flat %s", flat.ID), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("flat with ID %s not found for update: %w", flat.ID, dbt.ErrNotFound)
	}
	return nil
}

// FlatMemberAdd adds a member to the flat. Adding an existing member is a
// no-op.
func (pgdb *GORMLedgerDBWrapper) FlatMemberAdd(id uuid.UUID, member uuid.UUID) error {
	var flat FlatModel
	if result := pgdb.db.Select("id").First(&flat, "id = ?", id); result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
		}
		return storeFailure(fmt.Sprintf("failed to get flat %s", id), result.Error)
	}

	memberModel := FlatMemberModel{FlatID: id, MemberID: member}
	result := pgdb.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&memberModel)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to add member %s to flat %s", member, id), result.Error)
	}
	return nil
}

// FlatMemberRemove removes a member from the flat. Removing an absent member
// is a no-op; removing the last member is rejected.
func (pgdb *GORMLedgerDBWrapper) FlatMemberRemove(id uuid.UUID, member uuid.UUID) error {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		var flat FlatModel
		if result := tx.Select("id").First(&flat, "id = ?", id); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("flat with ID %s: %w", id, dbt.ErrNotFound)
			}
			return result.Error
		}

		var count int64
		if result := tx.Model(&FlatMemberModel{}).Where("flat_id = ?", id).Count(&count); result.Error != nil {
			return result.Error
		}

		result := tx.Where("flat_id = ? AND member_id = ?", id, member).Delete(&FlatMemberModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 1 && count == 1 {
			return fmt.Errorf("cannot remove the last member of flat %s", id)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, dbt.ErrNotFound) || strings.Contains(err.Error(), "last member") {
			return err
		}
		return storeFailure(fmt.Sprintf("failed to remove member %s from flat %s", member, id), err)
	}
	return nil
}

// DeleteFlat deletes a flat and its member rows.
func (pgdb *GORMLedgerDBWrapper) DeleteFlat(id uuid.UUID) error {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&FlatModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("flat with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
		}
		if result := tx.Where("flat_id = ?", id).Delete(&FlatMemberModel{}); result.Error != nil {
			return result.Error
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, dbt.ErrNotFound) {
			return err
		}
		return storeFailure(fmt.Sprintf("failed to delete flat %s", id), err)
	}
	return nil
}

// CreateUser creates a new user; emails are unique.
func (pgdb *GORMLedgerDBWrapper) CreateUser(user *dbt.User) error {
	model := userToModel(user)
	result := pgdb.db.Create(&model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("user with ID %s or email %s already exists: %w", user.ID, user.Email, result.Error)
		}
		return storeFailure(fmt.Sprintf("failed to create user %s", user.ID), result.Error)
	}
	return nil
}

// GetUser retrieves a user by id.
func (pgdb *GORMLedgerDBWrapper) GetUser(id uuid.UUID) (*dbt.User, error) {
	var model UserModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with ID %s: %w", id, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get user %s", id), result.Error)
	}
	user := userFromModel(model)
	return &user, nil
}

// GetUserByEmail retrieves a user by email.
func (pgdb *GORMLedgerDBWrapper) GetUserByEmail(email string) (*dbt.User, error) {
	var model UserModel
	result := pgdb.db.First(&model, "email = ?", email)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user with email %s: %w", email, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get user by email %s", email), result.Error)
	}
	user := userFromModel(model)
	return &user, nil
}

// UpdateUser replaces a user's profile.
func (pgdb *GORMLedgerDBWrapper) UpdateUser(user *dbt.User) error {
	model := userToModel(user)
	result := pgdb.db.Model(&model).
		Select("name", "email", "avatar_url", "bank_info", "flat_id").
		Where("id = ?", user.ID).Updates(model)
	if result.Error != nil {
		if isDuplicateKey(result.Error) {
			return fmt.Errorf("user with email %s already exists: %w", user.Email, result.Error)
		}
		return storeFailure(fmt.Sprintf("failed to update user %s", user.ID), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for update: %w", user.ID, dbt.ErrNotFound)
	}
	return nil
}

// DeleteUser deletes a user by id.
func (pgdb *GORMLedgerDBWrapper) DeleteUser(id uuid.UUID) error {
	result := pgdb.db.Delete(&UserModel{}, "id = ?", id)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to delete user %s", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	return nil
}

// PutReminder inserts or replaces a reminder by id.
func (pgdb *GORMLedgerDBWrapper) PutReminder(reminder *dbt.Reminder) error {
	model := reminderToModel(reminder)
	result := pgdb.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to put reminder %s", reminder.ID), result.Error)
	}
	return nil
}

// GetReminder retrieves a reminder by id.
func (pgdb *GORMLedgerDBWrapper) GetReminder(id uuid.UUID) (*dbt.Reminder, error) {
	var model ReminderModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("reminder with ID %s: %w", id, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get reminder %s", id), result.Error)
	}
	reminder := reminderFromModel(model)
	return &reminder, nil
}

// UpdateReminderStatus moves a reminder through its state machine. Paid is
// terminal.
func (pgdb *GORMLedgerDBWrapper) UpdateReminderStatus(id uuid.UUID, status dbt.ReminderStatus) error {
	err := pgdb.db.Transaction(func(tx *gorm.DB) error {
		var model ReminderModel
		if result := tx.Select("id", "status").First(&model, "id = ?", id); result.Error != nil {
			if errors.Is(result.Error, gorm.ErrRecordNotFound) {
				return fmt.Errorf("reminder with ID %s not found for update: %w", id, dbt.ErrNotFound)
			}
			return result.Error
		}
		if dbt.ReminderStatus(model.Status) == dbt.StatusPaid && status != dbt.StatusPaid {
			return fmt.Errorf("reminder with ID %s is already paid", id)
		}
		result := tx.Model(&ReminderModel{}).Where("id = ?", id).Update("status", int(status))
		return result.Error
	})
	if err != nil {
		if errors.Is(err, dbt.ErrNotFound) || strings.Contains(err.Error(), "already paid") {
			return err
		}
		return storeFailure(fmt.Sprintf("failed to update reminder %s", id), err)
	}
	return nil
}

// DeleteReminder deletes a reminder by id.
func (pgdb *GORMLedgerDBWrapper) DeleteReminder(id uuid.UUID) error {
	result := pgdb.db.Delete(&ReminderModel{}, "id = ?", id)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to delete reminder %s", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("reminder with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	return nil
}

// QueryReminders returns the reminders matching the filter, ordered by due
// date ascending.
func (pgdb *GORMLedgerDBWrapper) QueryReminders(ctx context.Context, filter dbt.ReminderFilter) ([]dbt.Reminder, error) {
	query := pgdb.db.WithContext(ctx).Model(&ReminderModel{})
	if filter.UserID != uuid.Nil {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.FlatID != uuid.Nil {
		query = query.Where("flat_id = ?", filter.FlatID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", int(*filter.Status))
	}
	if filter.DueBefore != nil {
		query = query.Where("due_date < ?", *filter.DueBefore)
	}

	var models []ReminderModel
	if result := query.Order("due_date, id").Find(&models); result.Error != nil {
		return nil, storeFailure("failed to query reminders", result.Error)
	}

	reminders := make([]dbt.Reminder, 0, len(models))
	for _, m := range models {
		reminders = append(reminders, reminderFromModel(m))
	}
	return reminders, nil
}

// PutBudget inserts or replaces a budget by id.
func (pgdb *GORMLedgerDBWrapper) PutBudget(budget *dbt.Budget) error {
	model := budgetToModel(budget)
	result := pgdb.db.Clauses(clause.OnConflict{UpdateAll: true}).Create(&model)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to put budget %s", budget.ID), result.Error)
	}
	return nil
}

// GetBudget retrieves a budget by id.
func (pgdb *GORMLedgerDBWrapper) GetBudget(id uuid.UUID) (*dbt.Budget, error) {
	var model BudgetModel
	result := pgdb.db.First(&model, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("budget with ID %s: %w", id, dbt.ErrNotFound)
		}
		return nil, storeFailure(fmt.Sprintf("failed to get budget %s", id), result.Error)
	}
	budget := budgetFromModel(model)
	return &budget, nil
}

// DeleteBudget deletes a budget by id.
func (pgdb *GORMLedgerDBWrapper) DeleteBudget(id uuid.UUID) error {
	result := pgdb.db.Delete(&BudgetModel{}, "id = ?", id)
	if result.Error != nil {
		return storeFailure(fmt.Sprintf("failed to delete budget %s", id), result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("budget with ID %s not found for deletion: %w", id, dbt.ErrNotFound)
	}
	return nil
}

// ListBudgets returns the user's budgets active at instant at, ordered by
// start date.
func (pgdb *GORMLedgerDBWrapper) ListBudgets(userID uuid.UUID, at time.Time) ([]dbt.Budget, error) {
	var models []BudgetModel
	result := pgdb.db.
		Where("user_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date > ?)", userID, at, at).
		Order("start_date, id").Find(&models)
	if result.Error != nil {
		return nil, storeFailure(fmt.Sprintf("failed to list budgets for user %s", userID), result.Error)
	}

	budgets := make([]dbt.Budget, 0, len(models))
	for _, m := range models {
		budgets = append(budgets, budgetFromModel(m))
	}
	return budgets, nil
}
