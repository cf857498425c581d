package testutil

const javaDir = "src/main/java/com/example/"
const webapp = "src/main/webapp/"

// SampleFiles is a small ZK project exercising every usage channel: command
// names from literals and constants, bean accessors, inheritance, nested
// bindings, relative and dynamic includes, an include cycle, Java-side calls
// and a class nothing refers to.
//
// Expected findings:
//   - CompletelyUnusedViewModel is unused.
//   - BaseViewModel.toOverride, UserViewModel.toOverride,
//     UserViewModel.unusedMethod, OrderViewModel.unusedMethod,
//     ParentViewModel.orphanAction and DynamicIncludeViewModel.unusedDynamic
//     are unused methods of active ViewModels.
var SampleFiles = map[string]string{
	javaDir + "BaseViewModel.java": `package com.example;

// A base class for other ViewModels to extend.
public abstract class BaseViewModel {

    public void commonBaseFunction() {
        System.out.println("common");
    }

    public void toOverride() {
        System.out.println("Base toOverride");
    }
}
`,
	javaDir + "UserViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;
import org.zkoss.bind.annotation.Init;
import org.zkoss.bind.annotation.NotifyChange;

public class UserViewModel extends BaseViewModel {

    private String username;

    @Init
    public void init() {
        this.username = "JohnDoe";
    }

    public String getUsername() {
        return username;
    }

    @NotifyChange("username")
    public void setUsername(String username) {
        this.username = username;
    }

    @Command
    public void saveUser() {
        System.out.println("User saved: " + this.username);
    }

    public void processInternalData() {
        System.out.println("Processing some internal data.");
    }

    public void unusedMethod() {
        System.out.println("This should not be called.");
    }

    @Override
    public void toOverride() {
        System.out.println("UserViewModel toOverride");
    }
}
`,
	javaDir + "Commands.java": `package com.example;

public final class Commands {
    public static final String REFRESH = "refreshOrders";

    private Commands() {
    }
}
`,
	javaDir + "OrderViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;
import org.zkoss.bind.annotation.GlobalCommand;

public class OrderViewModel extends BaseViewModel {

    private String orderId;

    public String getOrderId() {
        return orderId;
    }

    public void setOrderId(String orderId) {
        this.orderId = orderId;
    }

    @Command("submitOrder")
    public void doSubmit() {
        System.out.println("Order submitted: " + orderId);
    }

    @GlobalCommand(Commands.REFRESH)
    public void refresh() {
        System.out.println("Refreshing all orders.");
    }

    public void unusedMethod() {
        System.out.println("never called");
    }
}
`,
	javaDir + "CompletelyUnusedViewModel.java": `package com.example;

public class CompletelyUnusedViewModel {

    public void doNothing() {
    }

    public String getNothing() {
        return null;
    }
}
`,
	javaDir + "NestedMainViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;

public class NestedMainViewModel {

    @Command
    public void saveAll() {
        System.out.println("Main VM saving all...");
    }

    public String getMainTitle() {
        return "Main View";
    }
}
`,
	javaDir + "NestedDetailViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;

public class NestedDetailViewModel {

    @Command
    public void saveDetail() {
        System.out.println("Detail VM saving...");
    }

    public String getDetailInfo() {
        return "Some detail info.";
    }
}
`,
	javaDir + "ParentViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;

public class ParentViewModel {

    public String getParentMessage() {
        return "Message from Parent";
    }

    @Command
    public void actionFromIncluded() {
        System.out.println("Action triggered from an included ZUL file.");
    }

    @Command
    public void orphanAction() {
    }
}
`,
	javaDir + "DynamicIncludeViewModel.java": `package com.example;

import org.zkoss.bind.annotation.Command;

public class DynamicIncludeViewModel {

    public String getPath() {
        return "panels";
    }

    @Command
    public void commandInDynamicA() {
    }

    @Command
    public void commandInDynamicB() {
    }

    public void unusedDynamic() {
    }
}
`,
	javaDir + "service/UserService.java": `package com.example.service;

import com.example.UserViewModel;

public class UserService {

    public void process() {
        UserViewModel vm = new UserViewModel();
        vm.processInternalData();
    }
}
`,
	javaDir + "Broken.java": `package com.example;

public class Broken {
    public void oops( {
`,
	webapp + "user.zul": `<zk>
  <window apply="org.zkoss.bind.BindComposer"
          viewModel="@id('vm') @init('com.example.UserViewModel')">
    <textbox value="@bind(vm.username)"/>
    <button label="Save" onClick="@command('saveUser')"/>
  </window>
</zk>
`,
	webapp + "order.zul": `<zk>
  <window apply="org.zkoss.bind.BindComposer"
          viewModel="@id('vm') @init('com.example.OrderViewModel')">
    <label value="@load(vm.orderId)"/>
    <button label="Submit" onClick="@command('submitOrder')"/>
    <button label="Refresh" onClick="@global-command('refreshOrders')"/>
    <button label="Common" onClick="@command('commonBaseFunction')"/>
  </window>
</zk>
`,
	webapp + "nested/main.zul": `<zk>
  <window apply="org.zkoss.bind.BindComposer"
          viewModel="@id('main') @init('com.example.NestedMainViewModel')">
    <label value="@load(main.mainTitle)"/>
    <button onClick="@command('saveAll')"/>
    <div viewModel="@id('detail') @init('com.example.NestedDetailViewModel')">
      <label value="@load(detail.detailInfo)"/>
      <button onClick="@command('saveDetail')"/>
    </div>
  </window>
</zk>
`,
	webapp + "parent.zul": `<zk>
  <window apply="org.zkoss.bind.BindComposer"
          viewModel="@id('vm') @init('com.example.ParentViewModel')">
    <label value="@load(vm.parentMessage)"/>
    <include src="included/child.zul"/>
  </window>
</zk>
`,
	webapp + "included/child.zul": `<zk>
  <button label="Act" onClick="@command('actionFromIncluded')"/>
  <include src="/parent.zul"/>
</zk>
`,
	webapp + "dynamic.zul": `<zk>
  <window apply="org.zkoss.bind.BindComposer"
          viewModel="@id('vm') @init('com.example.DynamicIncludeViewModel')">
    <include src="${vm.path}/panel.zul"/>
  </window>
</zk>
`,
	webapp + "panels/a/panel.zul": `<zk>
  <button onClick="@command('commandInDynamicA')"/>
</zk>
`,
	webapp + "panels/b/panel.zul": `<zk>
  <button onClick="@command('commandInDynamicB')"/>
</zk>
`,
	webapp + "broken.zul": `<zk><window viewModel="@id('vm') @init('com.example.CompletelyUnusedViewModel')" <oops/></zk>`,
}
